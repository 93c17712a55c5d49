package menu

// Node is one entry of the navigation hierarchy. Nodes without a path are
// group headers; SubMenus are ordered by the Order field.
type Node struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Icon     string  `json:"icon,omitempty"`
	Glyph    string  `json:"glyph,omitempty"`
	Path     string  `json:"path,omitempty"`
	Order    int     `json:"order"`
	ParentID *string `json:"parentMenuId,omitempty"`
	SubMenus []Node  `json:"subMenus,omitempty"`
}

// HasChildren reports whether the node owns sub-menus.
func (n Node) HasChildren() bool {
	return len(n.SubMenus) > 0
}

// Permission is an entry of the global permission catalog.
type Permission struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Role mirrors the backend role catalog entry referenced by assignments.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateInput is the payload for creating a menu node.
type CreateInput struct {
	Title    string  `json:"title" validate:"required,min=2"`
	Icon     string  `json:"icon" validate:"omitempty"`
	Path     string  `json:"path" validate:"omitempty,startswith=/"`
	Order    int     `json:"order" validate:"min=0"`
	ParentID *string `json:"parentMenuId"`
}

// UpdateInput is the payload for editing a menu node. Same rules as create.
type UpdateInput struct {
	Title    string  `json:"title" validate:"required,min=2"`
	Icon     string  `json:"icon" validate:"omitempty"`
	Path     string  `json:"path" validate:"omitempty,startswith=/"`
	Order    int     `json:"order" validate:"min=0"`
	ParentID *string `json:"parentMenuId"`
}
