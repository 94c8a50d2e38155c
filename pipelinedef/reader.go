package pipelinedef

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/pointflow/dag"
	"github.com/kbukum/pointflow/errors"
	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/options"
	"github.com/kbukum/pointflow/stage"
)

// Member names with structural meaning. Every other member is an option.
const (
	keyType     = "type"
	keyFilename = "filename"
	keyTag      = "tag"
	keyInputs   = "inputs"
	keyPlugin   = "plugin"
)

// Reader turns pipeline documents into stage graphs.
type Reader struct {
	reg  *stage.Registry
	base *options.Options
	log  *logger.Logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithBaseOptions adds options every stage starts from.
func WithBaseOptions(o *options.Options) ReaderOption {
	return func(r *Reader) { r.base.Merge(o) }
}

// WithDebug adds the debug base option.
func WithDebug(debug bool) ReaderOption {
	return func(r *Reader) {
		if debug {
			r.base.Add("debug", "true")
		}
	}
}

// WithVerbosity adds the verbose base option when level is positive.
func WithVerbosity(level int) ReaderOption {
	return func(r *Reader) {
		if level > 0 {
			r.base.Add("verbose", level)
		}
	}
}

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(l *logger.Logger) ReaderOption {
	return func(r *Reader) { r.log = l }
}

// NewReader creates a Reader resolving drivers against reg.
func NewReader(reg *stage.Registry, opts ...ReaderOption) *Reader {
	r := &Reader{reg: reg, base: options.New(), log: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("pipelinedef")
	return r
}

// Read parses a document. Relative filenames resolve against the working
// directory.
func (r *Reader) Read(data []byte) (*dag.Graph, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, errors.DocumentSyntax("cannot determine working directory").WithCause(err)
	}
	return r.parse(data, FormatAuto, dir)
}

// ReadFile parses the document at path. Relative filenames resolve against
// the document's directory. Files ending in .yaml or .yml are read as YAML.
func (r *Reader) ReadFile(path string) (*dag.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.DocumentSyntax(fmt.Sprintf("cannot read %s", path)).WithCause(err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.DocumentSyntax(fmt.Sprintf("cannot resolve %s", path)).WithCause(err)
	}

	format := FormatAuto
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".json", ".jsonc":
		format = FormatJSON
	}

	g, err := r.parse(data, format, filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func (r *Reader) parse(data []byte, format Format, dir string) (*dag.Graph, error) {
	seq, err := parseDocument(data, format)
	if err != nil {
		return nil, err
	}

	p := &parser{Reader: r, dir: dir, graph: dag.NewGraph(), count: len(seq.Content)}
	for i, node := range seq.Content {
		p.descriptor(i, node)
	}
	if len(p.issues) > 0 {
		r.log.Debug("pipeline rejected", map[string]any{"issues": len(p.issues)})
		return nil, errors.Join(p.issues...)
	}
	if err := p.graph.Validate(); err != nil {
		return nil, err
	}

	r.log.Debug("pipeline parsed", map[string]any{"stages": len(p.graph.Stages)})
	return p.graph, nil
}

// parser holds the state of one document walk.
type parser struct {
	*Reader
	dir    string
	graph  *dag.Graph
	count  int
	issues []error

	// prev is the stage built from the previous descriptor, nil if it failed.
	prev       *stage.Stage
	prevFailed bool
}

// descriptor resolves the i'th stage descriptor. Issues are recorded and the
// walk continues.
func (p *parser) descriptor(i int, node *yaml.Node) {
	var s *stage.Stage
	switch node.Kind {
	case yaml.ScalarNode:
		s = p.filenameDescriptor(i, node)
	case yaml.MappingNode:
		s = p.objectDescriptor(i, node)
	default:
		p.fail(at(errors.DocumentSyntax("stage descriptor must be a filename or an object"), node, i))
	}

	if s == nil {
		p.prev, p.prevFailed = nil, true
		return
	}
	p.graph.Add(s)
	p.prev, p.prevFailed = s, false
	p.log.Trace("stage resolved", map[string]any{
		logger.FieldStage: s.Name(), "index": i, "inputs": len(s.Inputs),
	})
}

// filenameDescriptor handles the bare string shorthand.
func (p *parser) filenameDescriptor(i int, node *yaml.Node) *stage.Stage {
	filename, _ := scalarValue(node)
	driver, inferred, err := p.inferDriver(i, filename)
	if err != nil {
		p.fail(at(err, node, i))
		return nil
	}

	s, newErr := p.reg.New(driver)
	if newErr != nil {
		p.fail(at(asAppError(newErr), node, i))
		return nil
	}
	s.Options = p.base.Clone()
	s.Options.Add(keyFilename, p.expandPath(filename))
	s.Options.Merge(inferred)

	p.wire(i, node, s, nil, false)
	return s
}

// member is an object member kept in document order.
type member struct {
	key   string
	value *yaml.Node
}

// objectDescriptor handles the object form.
func (p *parser) objectDescriptor(i int, node *yaml.Node) *stage.Stage {
	var (
		types     []string
		filename  string
		tag       string
		refs      []string
		hasInputs bool
		opts      = options.New()
		ok        = true
	)

	for j := 0; j+1 < len(node.Content); j += 2 {
		k, v := node.Content[j], node.Content[j+1]
		key, isScalar := scalarValue(k)
		if !isScalar {
			p.fail(at(errors.DocumentSyntax("stage member names must be strings"), k, i))
			ok = false
			continue
		}

		switch key {
		case keyType:
			name, isScalar := scalarValue(v)
			if !isScalar {
				p.fail(at(errors.DocumentSyntax(`"type" must be a string`), v, i))
				ok = false
				continue
			}
			types = append(types, name)
		case keyTag:
			t, isScalar := scalarValue(v)
			if !isScalar || t == "" {
				p.fail(at(errors.DocumentSyntax(`"tag" must be a non-empty string`), v, i))
				ok = false
				continue
			}
			tag = t
		case keyInputs:
			list, err := inputRefs(v)
			if err != nil {
				p.fail(at(err, v, i))
				ok = false
				continue
			}
			refs, hasInputs = append(refs, list...), true
		default:
			value, err := optionValue(v)
			if err != nil {
				p.fail(at(errors.DocumentSyntax(fmt.Sprintf("cannot read option %q", key)).WithCause(err), v, i))
				ok = false
				continue
			}
			if key == keyFilename {
				if s, isStr := value.(string); isStr {
					filename = s
					value = p.expandPath(s)
				}
			}
			if key == keyPlugin {
				if err := p.loadPlugin(value); err != nil {
					p.fail(at(asAppError(err), v, i))
					ok = false
				}
			}
			opts.Add(key, value)
		}
	}

	driver, inferred, err := p.resolveType(i, types, filename)
	if err != nil {
		p.fail(at(err, node, i))
		return nil
	}
	s, newErr := p.reg.New(driver)
	if newErr != nil {
		p.fail(at(asAppError(newErr), node, i))
		return nil
	}
	s.Options = p.base.Clone().Merge(inferred).Merge(opts)

	if !p.wire(i, node, s, refs, hasInputs) {
		ok = false
	}

	if tag != "" {
		if p.graph.ByTag(tag) != nil {
			p.fail(at(errors.DuplicateTag(tag), node, i))
			ok = false
		} else {
			s.Tag = tag
		}
	}
	if !ok {
		return nil
	}
	return s
}

// resolveType picks the driver from the type members, or infers it from the
// filename when no type is given.
func (p *parser) resolveType(i int, types []string, filename string) (string, *options.Options, *errors.AppError) {
	switch {
	case len(types) > 1:
		return "", nil, errors.Cardinality("extra type member found")
	case len(types) == 1 && types[0] != "":
		return types[0], nil, nil
	case filename == "":
		return "", nil, errors.DriverResolution("stage has no type and no filename to infer one from")
	}
	return p.inferDriver(i, filename)
}

// inferDriver infers a reader for every position but the last, where it
// infers a writer. Writers may imply extra options.
func (p *parser) inferDriver(i int, filename string) (string, *options.Options, *errors.AppError) {
	if i < p.count-1 {
		name, err := p.reg.InferReader(filename)
		if err != nil {
			return "", nil, asAppError(err)
		}
		return name, nil, nil
	}

	name, err := p.reg.InferWriter(filename)
	if err != nil {
		return "", nil, asAppError(err)
	}
	var inferred *options.Options
	if info, ok := p.reg.Lookup(name); ok && info.InferOptions != nil {
		inferred = info.InferOptions(filename)
	}
	return name, inferred, nil
}

// wire connects s to its upstream stages and checks the count against the
// driver's cardinality. It reports whether wiring succeeded.
func (p *parser) wire(i int, node *yaml.Node, s *stage.Stage, refs []string, explicit bool) bool {
	ok := true
	if explicit {
		for _, ref := range refs {
			up := p.graph.ByTag(ref)
			if up == nil {
				p.fail(at(errors.UndefinedTag(ref), node, i))
				ok = false
				continue
			}
			s.SetInput(up)
		}
		if !ok {
			return false
		}
	} else if s.Role != stage.RoleReader {
		if p.prev != nil {
			s.SetInput(p.prev)
		} else if p.prevFailed {
			// The previous descriptor already reported why it has no stage.
			return false
		}
	}

	if err := checkCardinality(s.InputCardinality(), len(s.Inputs)); err != nil {
		p.fail(at(err.WithDetail(logger.FieldStage, s.Type), node, i))
		return false
	}
	return true
}

func checkCardinality(c stage.Cardinality, n int) *errors.AppError {
	switch c {
	case stage.CardinalityNone:
		if n != 0 {
			return errors.Cardinality("found input stages where none were expected")
		}
	case stage.CardinalityOne:
		if n == 0 {
			return errors.Cardinality("expected input stage missing")
		}
		if n > 1 {
			return errors.Cardinality("extra input stages found")
		}
	case stage.CardinalityMany:
		if n == 0 {
			return errors.Cardinality("expected input stage missing")
		}
	}
	return nil
}

func (p *parser) loadPlugin(value any) error {
	path, ok := value.(string)
	if !ok || path == "" {
		return errors.InvalidOption(keyPlugin, "plugin must be a path")
	}
	return p.reg.LoadPlugin(p.expandPath(path))
}

func (p *parser) expandPath(path string) string {
	return ExpandPath(path, p.dir)
}

func (p *parser) fail(err *errors.AppError) {
	p.issues = append(p.issues, err)
}

// inputRefs reads an "inputs" member: a tag or a list of tags.
func inputRefs(node *yaml.Node) ([]string, *errors.AppError) {
	if ref, ok := scalarValue(node); ok {
		if ref == "" {
			return nil, errors.DocumentSyntax(`"inputs" must name a tag`)
		}
		return []string{ref}, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, errors.DocumentSyntax(`"inputs" must be a tag or a list of tags`)
	}
	refs := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		ref, ok := scalarValue(item)
		if !ok || ref == "" {
			return nil, errors.DocumentSyntax(`"inputs" entries must be tags`)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// asAppError returns err as an AppError, wrapping foreign errors as driver
// resolution failures.
func asAppError(err error) *errors.AppError {
	if app, ok := err.(*errors.AppError); ok {
		return app
	}
	return errors.DriverResolution(err.Error()).WithCause(err)
}
