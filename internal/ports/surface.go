package ports

import "callscope/internal/domain"

// Surface is the rendering target of a view.
// A view owns all logical state; the surface only mirrors what it is told.
type Surface interface {
	Restore(elements domain.Elements)
	Remove(ids []string)
	Reparent(nodeID, parentID string)
	SetEdgeStyles(styles map[string]domain.EdgeStyle)
	Relayout()
	Destroy()
}

// NopSurface ignores every call
type NopSurface struct{}

func (NopSurface) Restore(domain.Elements)                   {}
func (NopSurface) Remove([]string)                           {}
func (NopSurface) Reparent(string, string)                   {}
func (NopSurface) SetEdgeStyles(map[string]domain.EdgeStyle) {}
func (NopSurface) Relayout()                                 {}
func (NopSurface) Destroy()                                  {}
