// SPDX-License-Identifier: MPL-2.0

package builtin

import "dcg-cli/internal/packs"

func dockerPack() *packs.Pack {
	return &packs.Pack{
		ID:          "containers.docker",
		Name:        "Docker",
		Version:     "1.0.0",
		Description: "Protects against destructive Docker operations",
		Keywords:    []string{"docker"},
		SafePatterns: []packs.SafePattern{
			{Name: "ps-images-inspect", Pattern: `\bdocker\s+(?:ps|images|inspect|logs|stats)\b`},
		},
		DestructivePatterns: []packs.DestructivePattern{
			{
				Name:        "system-prune-all",
				Pattern:     `\bdocker\s+system\s+prune\s+(?:\S+\s+)*(?:-a|--all)`,
				Severity:    packs.SeverityCritical,
				Reason:      "docker system prune -a removes all unused images, containers, and networks.",
				Explanation: "With --all, images not referenced by a running container are deleted, including ones that take hours to rebuild. Adding --volumes also wipes named volumes.",
			},
			{
				Name:        "volume-prune",
				Pattern:     `\bdocker\s+volume\s+(?:prune|rm)\b`,
				Severity:    packs.SeverityHigh,
				Reason:      "docker volume rm/prune deletes persistent data volumes.",
				Explanation: "Volumes hold database files and other state that containers are supposed to outlive.",
			},
			{
				Name:        "container-rm-force",
				Pattern:     `\bdocker\s+(?:container\s+)?rm\s+(?:\S+\s+)*-f`,
				Severity:    packs.SeverityHigh,
				Reason:      "docker rm -f kills and removes running containers.",
				Explanation: "Force removal does not wait for a clean shutdown; in-flight writes are lost with the container layer.",
				Suggestion:  "docker stop first",
			},
			{
				Name:        "rmi-force",
				Pattern:     `\bdocker\s+rmi\s+(?:\S+\s+)*(?:-f|--force)`,
				Severity:    packs.SeverityMedium,
				Reason:      "docker rmi -f force-deletes images.",
				Explanation: "Forced image removal breaks containers created from the image.",
			},
		},
	}
}

func kubectlPack() *packs.Pack {
	return &packs.Pack{
		ID:          "kubernetes.kubectl",
		Name:        "kubectl",
		Version:     "1.0.0",
		Description: "Protects against destructive kubectl operations",
		Keywords:    []string{"kubectl", "k8s"},
		SafePatterns: []packs.SafePattern{
			{Name: "get-describe", Pattern: `\bkubectl\s+(?:\S+\s+)*(?:get|describe|logs|top|explain)\b`},
			{Name: "delete-dry-run", Pattern: `\bkubectl\s+(?:\S+\s+)*delete\s+.*--dry-run`},
		},
		DestructivePatterns: []packs.DestructivePattern{
			{
				Name:        "delete-namespace",
				Pattern:     `\bkubectl\s+(?:\S+\s+)*delete\s+(?:ns|namespace)s?\b`,
				Severity:    packs.SeverityCritical,
				Reason:      "kubectl delete namespace removes every resource in the namespace.",
				Explanation: "Namespace deletion cascades: deployments, services, secrets, and PVCs inside it are all destroyed.",
			},
			{
				Name:        "delete-all",
				Pattern:     `\bkubectl\s+(?:\S+\s+)*delete\s+(?:\S+\s+)*--all\b`,
				Severity:    packs.SeverityCritical,
				Reason:      "kubectl delete --all removes every resource of the given kind.",
				Explanation: "--all selects every object of the type in scope; combined with a cluster-wide context this empties the cluster of that kind.",
			},
			{
				Name:        "delete-force-no-grace",
				Pattern:     `\bkubectl\s+(?:\S+\s+)*delete\s+.*--force\b.*--grace-period=0`,
				Severity:    packs.SeverityHigh,
				Reason:      "Force deletion with zero grace period skips clean shutdown.",
				Explanation: "Pods are removed from the API without waiting for containers to exit; stateful workloads can lose quorum or data.",
			},
			{
				Name:        "drain",
				Pattern:     `\bkubectl\s+(?:\S+\s+)*drain\b`,
				Severity:    packs.SeverityHigh,
				Reason:      "kubectl drain evicts every pod from a node.",
				Explanation: "Draining moves workloads off the node; with --delete-emptydir-data local scratch data is destroyed.",
			},
		},
	}
}

func awsPack() *packs.Pack {
	return &packs.Pack{
		ID:          "cloud.aws",
		Name:        "AWS CLI",
		Version:     "1.0.0",
		Description: "Protects against destructive AWS CLI operations",
		Keywords:    []string{"aws"},
		SafePatterns: []packs.SafePattern{
			{Name: "describe-list-get", Pattern: `\baws\s+\S+\s+(?:describe|list|get)-`},
			{Name: "s3-ls", Pattern: `\baws\s+s3\s+ls\b`},
		},
		DestructivePatterns: []packs.DestructivePattern{
			{
				Name:        "s3-rb-force",
				Pattern:     `\baws\s+s3\s+rb\s+(?:\S+\s+)*--force`,
				Severity:    packs.SeverityCritical,
				Reason:      "aws s3 rb --force deletes a bucket and all its objects.",
				Explanation: "The bucket contents are deleted before the bucket itself; without versioning there is no recovery.",
			},
			{
				Name:        "s3-rm-recursive",
				Pattern:     `\baws\s+s3\s+rm\s+(?:\S+\s+)*--recursive`,
				Severity:    packs.SeverityHigh,
				Reason:      "aws s3 rm --recursive deletes every object under the prefix.",
				Explanation: "Recursive deletion walks the whole prefix; a missing trailing path component widens it to the entire bucket.",
				Suggestion:  "aws s3 rm --recursive --dryrun",
			},
			{
				Name:        "ec2-terminate",
				Pattern:     `\baws\s+ec2\s+terminate-instances\b`,
				Severity:    packs.SeverityCritical,
				Reason:      "terminate-instances destroys EC2 instances and their instance-store data.",
				Explanation: "Termination deletes instance-store volumes and, with DeleteOnTermination, the root EBS volume too.",
				Suggestion:  "aws ec2 stop-instances",
			},
			{
				Name:        "rds-delete-skip-snapshot",
				Pattern:     `\baws\s+rds\s+delete-db-instance\b.*--skip-final-snapshot`,
				Severity:    packs.SeverityCritical,
				Reason:      "Deleting an RDS instance without a final snapshot is unrecoverable.",
				Explanation: "--skip-final-snapshot discards the last chance to restore the database after deletion.",
			},
			{
				Name:        "cloudformation-delete-stack",
				Pattern:     `\baws\s+cloudformation\s+delete-stack\b`,
				Severity:    packs.SeverityHigh,
				Reason:      "delete-stack tears down every resource the stack created.",
				Explanation: "Stack deletion removes resources in dependency order; retained data depends entirely on per-resource deletion policies.",
			},
			{
				Name:        "dynamodb-delete-table",
				Pattern:     `\baws\s+dynamodb\s+delete-table\b`,
				Severity:    packs.SeverityCritical,
				Reason:      "delete-table removes the table and all items.",
				Explanation: "Unless point-in-time recovery or an on-demand backup exists, the data is gone.",
			},
		},
	}
}

func terraformPack() *packs.Pack {
	return &packs.Pack{
		ID:          "infrastructure.terraform",
		Name:        "Terraform",
		Version:     "1.0.0",
		Description: "Protects against destructive Terraform operations",
		Keywords:    []string{"terraform", "tofu"},
		SafePatterns: []packs.SafePattern{
			{Name: "plan", Pattern: `\b(?:terraform|tofu)\s+plan\b`},
			{Name: "destroy-plan-only", Pattern: `\b(?:terraform|tofu)\s+plan\s+(?:\S+\s+)*-destroy`},
		},
		DestructivePatterns: []packs.DestructivePattern{
			{
				Name:        "destroy",
				Pattern:     `\b(?:terraform|tofu)\s+destroy\b`,
				Severity:    packs.SeverityCritical,
				Reason:      "terraform destroy deletes every managed resource.",
				Explanation: "destroy walks the state and deletes each resource; databases and buckets go with it unless prevented by lifecycle rules.",
				Suggestion:  "terraform plan -destroy",
			},
			{
				Name:        "apply-auto-approve",
				Pattern:     `\b(?:terraform|tofu)\s+apply\s+(?:\S+\s+)*-auto-approve`,
				Severity:    packs.SeverityHigh,
				Reason:      "apply -auto-approve skips the plan review.",
				Explanation: "Whatever the plan contains — including resource replacements that destroy data — is applied without a human look.",
			},
			{
				Name:        "state-rm",
				Pattern:     `\b(?:terraform|tofu)\s+state\s+rm\b`,
				Severity:    packs.SeverityHigh,
				Reason:      "state rm orphans resources from Terraform's state.",
				Explanation: "Removed addresses are no longer managed; the next apply may recreate duplicates or a later import may be impossible to reconcile.",
			},
			{
				Name:        "workspace-delete-force",
				Pattern:     `\b(?:terraform|tofu)\s+workspace\s+delete\s+(?:\S+\s+)*-force`,
				Severity:    packs.SeverityHigh,
				Reason:      "workspace delete -force discards a non-empty state.",
				Explanation: "Forcing deletion throws away the workspace's state file even when resources still exist.",
			},
		},
	}
}

func diskPack() *packs.Pack {
	return &packs.Pack{
		ID:          "system.disk",
		Name:        "System Disk",
		Version:     "1.0.0",
		Description: "Protects against disk formatting and partition destruction",
		Keywords:    []string{"mkfs", "fdisk", "parted", "wipefs", "mkswap"},
		DestructivePatterns: []packs.DestructivePattern{
			{
				Name:        "mkfs",
				Pattern:     `\bmkfs(?:\.\w+)?\s+`,
				Severity:    packs.SeverityCritical,
				Reason:      "mkfs formats a device, destroying its contents.",
				Explanation: "Creating a filesystem writes fresh metadata over whatever the device held.",
			},
			{
				Name:        "wipefs",
				Pattern:     `\bwipefs\s+(?:\S+\s+)*(?:-a|--all)`,
				Severity:    packs.SeverityCritical,
				Reason:      "wipefs -a erases filesystem signatures from a device.",
				Explanation: "Without the signatures the kernel no longer recognizes the filesystem; recovery needs specialist tooling.",
			},
			{
				Name:        "parted-rm",
				Pattern:     `\bparted\s+(?:\S+\s+)*rm\b`,
				Severity:    packs.SeverityCritical,
				Reason:      "parted rm deletes a partition.",
				Explanation: "Removing the partition entry makes the data unreachable even though the blocks remain.",
			},
			{
				Name:        "mkswap-device",
				Pattern:     `\bmkswap\s+/dev/`,
				Severity:    packs.SeverityHigh,
				Reason:      "mkswap overwrites the device header.",
				Explanation: "Initializing swap destroys the first blocks of whatever filesystem lived there.",
			},
		},
	}
}
