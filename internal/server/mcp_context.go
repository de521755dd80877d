package server

// MCPSystemContext provides context information for LLMs using plxdemo
const MCPSystemContext = `
# plxdemo - Exercise Parsing and Day Lookup

plxdemo exposes two small, stateless operations through the Model Context Protocol.

## Tools
- 'parse_exercise' takes 'raw' text and returns {parser, exercise: {title, solution, instruction}}
- 'day_name' takes a 'code' (1 = Monday ... 7 = Sunday) and optional 'lang' (fr, en)
  and returns {code, name, known}

## Exercise documents
The parser understands the exo.toml shape:

    name = "Week days"
    instruction = "Print the name of day n"
    solution = "..."

Text that is not a document still yields a record from the fallback parser
unless the server was started with fallback disabled. Empty text is rejected
with INVALID_INPUT.

## Tips
- Codes outside 1..7 are not errors: the result has known = false
- Non-numeric codes are rejected with INVALID_INPUT
`

// GetMCPContext returns the system context for LLMs
func GetMCPContext() string {
	return MCPSystemContext
}
