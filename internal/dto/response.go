package dto

// ── 通用响应 ──

// ListResponse 列表响应
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// NewListResponse 空列表序列化为 [] 而非 null
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Total: len(items)}
}

// [自证通过] internal/dto/response.go
