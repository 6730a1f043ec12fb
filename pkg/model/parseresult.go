package model

// ParseResult is the uniform value every language parser returns (spec.md
// §4.5). A single file produces exactly one ParseResult; the orchestrator's
// reducer merges many of them by union-update on the maps and concatenation
// on the lists.
type ParseResult struct {
	Files            map[string]*File         `json:"files"`
	Functions        map[string]*Function     `json:"functions"`
	Classes          map[string]*Class         `json:"classes"`
	Imports          map[string]map[string]int      `json:"imports"` // file -> module -> count
	ImportsDetailed  []ImportDetail                 `json:"imports_detailed"`
	Exports          map[string]map[string]ExportInfo `json:"exports"` // file -> symbol -> info
	EntryPoints      []EntryPoint                   `json:"entry_points"`

	APIEndpoints         []APIEndpoint         `json:"api_endpoints,omitempty"`
	DatabaseQueries      []DatabaseQuery       `json:"database_queries,omitempty"`
	ErrorHandlers        []ErrorHandler        `json:"error_handlers,omitempty"`
	ConfigUsages         []ConfigUsage         `json:"config_usage,omitempty"`
	SideEffects          []SideEffect          `json:"side_effects,omitempty"`
	CrossCuttingConcerns []CrossCuttingConcern `json:"cross_cutting_concerns,omitempty"`
	SecurityRisks        []SecurityRisk        `json:"security_risks,omitempty"`
	DataModels           []DataModel           `json:"data_models,omitempty"`
	ConcurrencyPatterns  []ConcurrencyPattern  `json:"concurrency_patterns,omitempty"`

	// Error is set when the file could not be (fully) parsed; Files still
	// carries a minimal record so the file is not treated as missing
	// (spec.md §7, ParseError propagation policy).
	Error error `json:"-"`
}

// NewParseResult returns an empty, ready-to-populate ParseResult.
func NewParseResult() *ParseResult {
	return &ParseResult{
		Files:           make(map[string]*File),
		Functions:       make(map[string]*Function),
		Classes:         make(map[string]*Class),
		Imports:         make(map[string]map[string]int),
		ImportsDetailed: nil,
		Exports:         make(map[string]map[string]ExportInfo),
		EntryPoints:     nil,
	}
}

// AddImport increments the (file, module) import count, initializing the
// inner map on first use.
func (r *ParseResult) AddImport(file, module string) {
	if r.Imports[file] == nil {
		r.Imports[file] = make(map[string]int)
	}
	r.Imports[file][module]++
}

// AddExport records one exported symbol for file, initializing the inner
// map on first use.
func (r *ParseResult) AddExport(file, symbol string, info ExportInfo) {
	if r.Exports[file] == nil {
		r.Exports[file] = make(map[string]ExportInfo)
	}
	r.Exports[file][symbol] = info
}

// Merge folds other into r by union-update on maps and concatenation on
// lists, matching the orchestrator's single-threaded reducer contract
// (spec.md §4.6 step 4). Merge never fails: conflicting function/class IDs
// across files cannot occur because each ID is namespaced by its file path,
// and same-file re-parses are never merged together (each file is parsed by
// exactly one worker per run).
func (r *ParseResult) Merge(other *ParseResult) {
	if other == nil {
		return
	}
	for k, v := range other.Files {
		r.Files[k] = v
	}
	for k, v := range other.Functions {
		r.Functions[k] = v
	}
	for k, v := range other.Classes {
		r.Classes[k] = v
	}
	for file, modules := range other.Imports {
		for module, count := range modules {
			if r.Imports[file] == nil {
				r.Imports[file] = make(map[string]int)
			}
			r.Imports[file][module] += count
		}
	}
	r.ImportsDetailed = append(r.ImportsDetailed, other.ImportsDetailed...)
	for file, symbols := range other.Exports {
		for symbol, info := range symbols {
			r.AddExport(file, symbol, info)
		}
	}
	r.EntryPoints = append(r.EntryPoints, other.EntryPoints...)
	r.APIEndpoints = append(r.APIEndpoints, other.APIEndpoints...)
	r.DatabaseQueries = append(r.DatabaseQueries, other.DatabaseQueries...)
	r.ErrorHandlers = append(r.ErrorHandlers, other.ErrorHandlers...)
	r.ConfigUsages = append(r.ConfigUsages, other.ConfigUsages...)
	r.SideEffects = append(r.SideEffects, other.SideEffects...)
	r.CrossCuttingConcerns = append(r.CrossCuttingConcerns, other.CrossCuttingConcerns...)
	r.SecurityRisks = append(r.SecurityRisks, other.SecurityRisks...)
	r.DataModels = append(r.DataModels, other.DataModels...)
	r.ConcurrencyPatterns = append(r.ConcurrencyPatterns, other.ConcurrencyPatterns...)
}
