package analysis

import (
	"strings"

	"github.com/standardbeagle/orc/internal/store"
)

// FolderStats is one directory's rolled-up counters.
type FolderStats struct {
	Files     int `json:"files"`
	LOC       int `json:"loc"`
	Functions int `json:"functions"`
	Classes   int `json:"classes"`
}

// FolderNode is one entry of a CodebaseMap, keyed by folder name at the
// caller's chosen directory depth.
type FolderNode struct {
	Stats   FolderStats            `json:"stats"`
	Subdirs map[string]*FolderNode `json:"subdirs,omitempty"`
}

// CodebaseMapArgs selects the rollup depth; zero means the spec.md §4.10
// default of 2.
type CodebaseMapArgs struct {
	Depth int `json:"depth"`
}

// CodebaseMap groups every indexed file into a folder_name -> {stats,
// subdirs} tree rolled up to args.Depth directory levels (default 2),
// excluding any path the project's ignore matcher would reject even if it
// somehow made it into the store.
func (a *Analyzer) CodebaseMap(args CodebaseMapArgs) (map[string]*FolderNode, error) {
	args.Depth = clampLimit(args.Depth, 2)
	return withCache(a, "codebase_map", args, func() (map[string]*FolderNode, error) {
		files, err := a.db.IterAllFiles()
		if err != nil {
			return nil, queryErr("codebase_map", err)
		}
		functions, err := a.db.IterAllFunctions()
		if err != nil {
			return nil, queryErr("codebase_map", err)
		}
		classes, err := a.db.QueryClasses(classesQueryAll())
		if err != nil {
			return nil, queryErr("codebase_map", err)
		}

		funcCountByFile := make(map[string]int)
		for _, fn := range functions {
			funcCountByFile[fn.File]++
		}
		classCountByFile := make(map[string]int)
		for _, c := range classes {
			classCountByFile[c.File]++
		}

		root := make(map[string]*FolderNode)
		for _, f := range files {
			if a.matcher != nil && a.matcher.ShouldIgnore(f.Path) {
				continue
			}
			segs := folderSegments(f.Path, args.Depth)
			node := descend(root, segs)
			node.Stats.Files++
			node.Stats.LOC += f.LOC
			node.Stats.Functions += funcCountByFile[f.Path]
			node.Stats.Classes += classCountByFile[f.Path]
		}
		return root, nil
	})
}

// folderSegments returns up to depth leading directory components of path
// (forward-slash-normalized, trailing file name dropped).
func folderSegments(path string, depth int) []string {
	norm := strings.ReplaceAll(path, "\\", "/")
	parts := strings.Split(strings.Trim(norm, "/"), "/")
	if len(parts) > 0 {
		parts = parts[:len(parts)-1] // drop the file name itself
	}
	if len(parts) > depth {
		parts = parts[:depth]
	}
	if len(parts) == 0 {
		return []string{"."}
	}
	return parts
}

// descend walks/creates nodes for each segment, returning the leaf.
func descend(root map[string]*FolderNode, segs []string) *FolderNode {
	cur := root
	var node *FolderNode
	for _, seg := range segs {
		n, ok := cur[seg]
		if !ok {
			n = &FolderNode{}
			cur[seg] = n
		}
		node = n
		if node.Subdirs == nil {
			node.Subdirs = make(map[string]*FolderNode)
		}
		cur = node.Subdirs
	}
	return node
}

func classesQueryAll() store.ClassQuery { return store.ClassQuery{Limit: 1 << 30} }
