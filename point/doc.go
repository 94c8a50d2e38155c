// Package point holds the in-memory point data model.
//
// A Table is the backing field store shared by every view of one pipeline
// run. A View is an ordered list of table rows with a lazily cached bounding
// box; several views may reference the same rows. A ViewSet is the identity
// set of views passed between stages.
package point
