package scip

// Symbols in the in-memory fixture. The layout of main.go is:
//
//	0 package main
//	1
//	2 func helper() int {
//	3 	return 1
//	4 }
//	5
//	6 func run() {
//	7 	helper()
//	8 	helper()
//	9 }
//	10
//	11 func main() {
//	12 	run()
//	13 	lib.Greet()
//	14 }
const (
	symHelper = "scip-go gomod example.com/app v1 `example.com/app`/helper()."
	symRun    = "scip-go gomod example.com/app v1 `example.com/app`/run()."
	symMain   = "scip-go gomod example.com/app v1 `example.com/app`/main()."
	symGreet  = "scip-go gomod example.com/lib v1.2.0 `example.com/lib`/Greet()."
	symServer = "scip-go gomod example.com/app v1 `example.com/app`/Server#"
	symStart  = "scip-go gomod example.com/app v1 `example.com/app`/Server#Start()."
	symAddr   = "scip-go gomod example.com/app v1 `example.com/app`/Server#addr."
)

func def(symbol string, rng ...int32) *Occurrence {
	return &Occurrence{Symbol: symbol, Range: rng, SymbolRoles: SymbolRoleDefinition}
}

func ref(symbol string, rng ...int32) *Occurrence {
	return &Occurrence{Symbol: symbol, Range: rng, SymbolRoles: SymbolRoleReadAccess}
}

func fixtureIndex() *Index {
	mainDoc := &Document{
		RelativePath: "main.go",
		Language:     "go",
		Occurrences: []*Occurrence{
			def(symHelper, 2, 5, 11),
			def(symRun, 6, 5, 8),
			ref(symHelper, 7, 1, 7),
			ref(symHelper, 8, 1, 7),
			def(symMain, 11, 5, 9),
			ref(symRun, 12, 1, 4),
			ref(symGreet, 13, 5, 10),
		},
		Symbols: []*SymbolInformation{
			{Symbol: symHelper, DisplayName: "helper"},
			{Symbol: symRun, DisplayName: "run"},
			{Symbol: symMain, DisplayName: "main"},
		},
	}
	serverDoc := &Document{
		RelativePath: "server.go",
		Language:     "go",
		Occurrences: []*Occurrence{
			def(symServer, 0, 5, 11),
			def(symAddr, 1, 1, 5),
			{Symbol: symStart, Range: []int32{3, 17, 22}, SymbolRoles: SymbolRoleDefinition, EnclosingRange: []int32{3, 0, 6, 1}},
			ref(symRun, 4, 1, 4),
			ref(symAddr, 5, 3, 7),
			def("local 0", 4, 8, 9),
		},
	}
	return NewIndex(&Metadata{ToolName: "scip-go"}, []*Document{mainDoc, serverDoc})
}
