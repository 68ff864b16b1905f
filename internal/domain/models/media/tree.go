package media

// FolderTreeNode is a folder plus its nested children, as produced by the
// pure tree-build step. The children index is rebuilt per query from the
// flat parent-id edges; nodes never hold owning references to each other.
type FolderTreeNode struct {
	Folder
	Children []*FolderTreeNode `json:"children"`
}
