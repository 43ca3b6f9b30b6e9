// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/knakk/rdf"

	"github.com/pdiddy/ontoextract/internal/template"
	"github.com/pdiddy/ontoextract/pkg/types"
)

const (
	// baseIRI prefixes template namespaces: <baseIRI><template>/.
	baseIRI = "https://w3id.org/ontoextract/"

	// resolverIRI turns a grounded CURIE into an IRI.
	resolverIRI = "https://bioregistry.io/"

	rdfsIRI   = "http://www.w3.org/2000/01/rdf-schema#"
	rdfsLabel = rdfsIRI + "label"
	rdfType   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
)

// graph walks an extracted object against its schema view. Values that an
// annotator grounded become IRIs; everything else stays a literal.
type graph struct {
	view     *template.SchemaView
	ns       string
	grounded map[string]string
}

func newGraph(result *types.ExtractionResult, view *template.SchemaView) (*graph, *template.Class, error) {
	if view == nil {
		return nil, nil, fmt.Errorf("rendering RDF: %w", types.ErrNoSchemaView)
	}
	class := view.RootClass()
	if result.TargetClass != "" {
		c, err := view.Class(result.TargetClass)
		if err != nil {
			return nil, nil, err
		}
		class = c
	}
	g := &graph{
		view:     view,
		ns:       baseIRI + url.PathEscape(view.Name()) + "/",
		grounded: make(map[string]string, len(result.NamedEntities)),
	}
	for _, e := range result.NamedEntities {
		g.grounded[e.ID] = e.Label
	}
	return g, class, nil
}

// isGrounded reports whether value is an identifier produced by grounding.
func (g *graph) isGrounded(slot template.Slot, value string) bool {
	_, ok := g.grounded[value]
	return ok && slot.Ground
}

// slotValues returns the list form of a slot value.
func slotValues(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

func idIRI(curie string) string {
	return "<" + resolverIRI + escapeIRI(curie) + ">"
}

// escapeIRI percent-encodes the characters Turtle and OWL forbid in IRIs.
func escapeIRI(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r <= 0x20, strings.ContainsRune(`<>"{}|^`+"`\\", r):
			sb.WriteString(url.PathEscape(string(r)))
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// owlQuote renders a quoted string for OWL functional syntax, where only
// the quote and backslash are escaped.
func owlQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// localName makes a schema name usable as a prefixed-name local part.
func localName(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r == '_' || r == '-' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// turtleRenderer writes the extracted object as RDF Turtle, the result and
// its nested objects as blank nodes.
type turtleRenderer struct{}

func (turtleRenderer) Format() types.OutputFormat { return types.FormatTurtle }

func (turtleRenderer) Render(w io.Writer, result *types.ExtractionResult, view *template.SchemaView) error {
	g, class, err := newGraph(result, view)
	if err != nil {
		return err
	}
	tw := &tripleWriter{g: g, counters: make(map[string]int)}
	tw.object(tw.blank("result"), class, result.ExtractedObject, "result")
	for _, e := range result.NamedEntities {
		if e.Label != "" {
			tw.add(tw.iri(resolverIRI+escapeIRI(e.ID)), tw.iri(rdfsLabel), tw.literal(e.Label))
		}
	}
	if tw.err != nil {
		return fmt.Errorf("rendering turtle: %w", tw.err)
	}

	enc := rdf.NewTripleEncoder(w, rdf.Turtle)
	for _, t := range tw.triples {
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("encoding turtle: %w", err)
		}
	}
	return enc.Close()
}

// tripleWriter collects the triples of one result. The first term
// construction error sticks.
type tripleWriter struct {
	g        *graph
	triples  []rdf.Triple
	counters map[string]int
	err      error
}

func (tw *tripleWriter) fail(err error) {
	if err != nil && tw.err == nil {
		tw.err = err
	}
}

func (tw *tripleWriter) iri(s string) rdf.IRI {
	iri, err := rdf.NewIRI(s)
	tw.fail(err)
	return iri
}

func (tw *tripleWriter) blank(id string) rdf.Blank {
	b, err := rdf.NewBlank(id)
	tw.fail(err)
	return b
}

func (tw *tripleWriter) literal(s string) rdf.Literal {
	lit, err := rdf.NewLiteral(s)
	tw.fail(err)
	return lit
}

func (tw *tripleWriter) add(s rdf.Subject, p rdf.Predicate, o rdf.Object) {
	tw.triples = append(tw.triples, rdf.Triple{Subj: s, Pred: p, Obj: o})
}

// object emits the triples of obj as an instance of class rooted at node.
func (tw *tripleWriter) object(node rdf.Blank, class *template.Class, obj map[string]any, id string) {
	if class != nil && class.Name != "" {
		tw.add(node, tw.iri(rdfType), tw.iri(tw.g.ns+localName(class.Name)))
	} else {
		class = &template.Class{}
	}
	for _, name := range sortedKeys(obj) {
		slot, _ := class.Slot(name)
		prop := localName(name)
		pred := tw.iri(tw.g.ns + prop)
		for _, v := range slotValues(obj[name]) {
			switch t := v.(type) {
			case map[string]any:
				key := id + "_" + prop
				tw.counters[key]++
				childID := fmt.Sprintf("%s_%d", key, tw.counters[key])
				child := tw.blank(childID)
				tw.add(node, pred, child)
				tw.object(child, tw.g.rangeClass(slot), t, childID)
			case nil:
			default:
				s := fmt.Sprint(t)
				if tw.g.isGrounded(slot, s) {
					tw.add(node, pred, tw.iri(resolverIRI+escapeIRI(s)))
				} else {
					tw.add(node, pred, tw.literal(s))
				}
			}
		}
	}
}

func (g *graph) rangeClass(slot template.Slot) *template.Class {
	if slot.Range == "" {
		return nil
	}
	c, err := g.view.Class(slot.Range)
	if err != nil {
		return nil
	}
	return c
}

// owlRenderer writes the extracted object as OWL functional-syntax
// assertions about named individuals.
type owlRenderer struct{}

func (owlRenderer) Format() types.OutputFormat { return types.FormatOWL }

type owlWriter struct {
	g        *graph
	decls    []string
	seen     map[string]bool
	axioms   []string
	counters map[string]int
}

func (o *owlWriter) declare(decl string) {
	if !o.seen[decl] {
		o.seen[decl] = true
		o.decls = append(o.decls, decl)
	}
}

func (o *owlWriter) individual(class *template.Class, obj map[string]any, id string) {
	o.declare(fmt.Sprintf("Declaration(NamedIndividual(:%s))", id))
	if class != nil && class.Name != "" {
		o.declare(fmt.Sprintf("Declaration(Class(:%s))", localName(class.Name)))
		o.axioms = append(o.axioms, fmt.Sprintf("ClassAssertion(:%s :%s)", localName(class.Name), id))
	} else {
		class = &template.Class{}
	}
	for _, name := range sortedKeys(obj) {
		slot, _ := class.Slot(name)
		prop := localName(name)
		for _, v := range slotValues(obj[name]) {
			switch t := v.(type) {
			case map[string]any:
				o.counters[prop]++
				child := fmt.Sprintf("%s_%s_%d", id, prop, o.counters[prop])
				o.declare(fmt.Sprintf("Declaration(ObjectProperty(:%s))", prop))
				o.axioms = append(o.axioms, fmt.Sprintf("ObjectPropertyAssertion(:%s :%s :%s)", prop, id, child))
				o.individual(o.g.rangeClass(slot), t, child)
			case nil:
			default:
				s := fmt.Sprint(t)
				if o.g.isGrounded(slot, s) {
					o.declare(fmt.Sprintf("Declaration(ObjectProperty(:%s))", prop))
					o.axioms = append(o.axioms, fmt.Sprintf("ObjectPropertyAssertion(:%s :%s %s)", prop, id, idIRI(s)))
				} else {
					o.declare(fmt.Sprintf("Declaration(DataProperty(:%s))", prop))
					o.axioms = append(o.axioms, fmt.Sprintf("DataPropertyAssertion(:%s :%s %s)", prop, id, owlQuote(s)))
				}
			}
		}
	}
}

func (owlRenderer) Render(w io.Writer, result *types.ExtractionResult, view *template.SchemaView) error {
	g, class, err := newGraph(result, view)
	if err != nil {
		return err
	}
	o := &owlWriter{g: g, seen: make(map[string]bool), counters: make(map[string]int)}
	for _, c := range view.Classes() {
		o.declare(fmt.Sprintf("Declaration(Class(:%s))", localName(c.Name)))
	}
	o.individual(class, result.ExtractedObject, "result")
	for _, e := range result.NamedEntities {
		if e.Label != "" {
			o.axioms = append(o.axioms, fmt.Sprintf("AnnotationAssertion(rdfs:label %s %s)", idIRI(e.ID), owlQuote(e.Label)))
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Prefix(:=<%s>)\n", g.ns)
	fmt.Fprintf(bw, "Prefix(rdfs:=<%s>)\n\n", rdfsIRI)
	fmt.Fprintf(bw, "Ontology(<%sresult>\n", g.ns)
	for _, d := range o.decls {
		fmt.Fprintf(bw, "%s\n", d)
	}
	for _, a := range o.axioms {
		fmt.Fprintf(bw, "%s\n", a)
	}
	bw.WriteString(")\n")
	return bw.Flush()
}
