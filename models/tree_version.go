package models

// TreeVersionStatus is the lifecycle state of a pricing definition version
type TreeVersionStatus string

const (
	TreeVersionDraft     TreeVersionStatus = "DRAFT"
	TreeVersionPublished TreeVersionStatus = "PUBLISHED"
	TreeVersionArchived  TreeVersionStatus = "ARCHIVED"
)

// TreeVersion is the slice of a pricing definition version this service reads
type TreeVersion struct {
	ID             string            `json:"id"`
	OrganizationID string            `json:"organizationId"`
	Status         TreeVersionStatus `json:"status"`
}
