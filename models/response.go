package models

// ReturnStatus is the body of every mutation endpoint.
type ReturnStatus struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// OrderRequest is the body of the reorder endpoints.
type OrderRequest struct {
	Order []int64 `json:"order"`
}

// HostLinkRequest adds or removes a host from a test case's source or target set.
type HostLinkRequest struct {
	Role   string `json:"role"`
	HostID int64  `json:"host_id"`
}

const (
	HostRoleSource = "source"
	HostRoleTarget = "target"
)
