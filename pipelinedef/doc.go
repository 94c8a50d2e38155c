// Package pipelinedef parses pipeline definition documents into stage
// graphs.
//
// A document is a mapping with a single "pipeline" member holding an ordered
// list of stage descriptors. A descriptor is either a filename string or an
// object:
//
//	{
//	  "pipeline": [
//	    "input.csv",
//	    { "type": "filters.splitter", "length": 100, "tag": "tiles" },
//	    { "type": "writers.text", "inputs": ["tiles"], "filename": "out.txt" }
//	  ]
//	}
//
// Documents may be JSON, JSON with comments and trailing commas, or YAML.
// Every descriptor is resolved even after an earlier one fails; all issues
// are returned together, each carrying the descriptor index and its line and
// column in the document.
package pipelinedef
