package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/termstore/internal/chronology"
	"github.com/roach88/termstore/internal/config"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/logic"
	"github.com/roach88/termstore/internal/metadata"
	"github.com/roach88/termstore/internal/schema"
	"github.com/roach88/termstore/internal/store"
)

// GraphOptions holds flags for the graph commands.
type GraphOptions struct {
	*RootOptions
	Concept string // import: the concept the graph defines
	Simple  bool   // show: builder-call rendering
	YAML    bool   // show: YAML document
}

// GraphView is the printable form of a stated logic graph.
type GraphView struct {
	Concept   string  `json:"concept"`
	Semantic  ids.Nid `json:"semantic"`
	Graph     string  `json:"graph"`
	Nodes     int     `json:"nodes"`
	Versions  int     `json:"versions"`
	Rendering string  `json:"rendering,omitempty"`
}

func (v GraphView) String() string {
	header := fmt.Sprintf("Concept %s: graph %s, %d node(s), %d version(s) (semantic %d)",
		v.Concept, v.Graph, v.Nodes, v.Versions, v.Semantic)
	if v.Rendering == "" {
		return header
	}
	return header + "\n" + strings.TrimRight(v.Rendering, "\n")
}

// RefsView lists the concepts whose stated graphs reference a concept.
type RefsView struct {
	Concept     string   `json:"concept"`
	Referencing []string `json:"referencing"`
}

func (v RefsView) String() string {
	if len(v.Referencing) == 0 {
		return fmt.Sprintf("No logic graph references %s", v.Concept)
	}
	return fmt.Sprintf("%d logic graph(s) reference %s:\n  %s",
		len(v.Referencing), v.Concept, strings.Join(v.Referencing, "\n  "))
}

// NewGraphCommand creates the graph command group.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Import and inspect stated logic graphs",
		Long: `Import and inspect the stated logic graphs that define concepts.

Graphs are exchanged as YAML documents whose nodes reference concepts
by UUID. In the store they are logic graph semantics of the stated
logic graph assemblage, referencing the concept they define.`,
	}

	importCmd := &cobra.Command{
		Use:   "import <yaml-file>",
		Short: "Import a stated logic graph for a concept",
		Long: `Import a YAML logic graph as the stated definition of a concept.

Importing again for the same concept appends a new version.

Examples:
  termstore graph import ./heart.yaml --concept 2f0c9a56-6b1e-5c3d-9e8f-0a1b2c3d4e5f`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraphImport(opts, args[0], cmd)
		},
	}
	importCmd.Flags().StringVar(&opts.Concept, "concept", "", "UUID of the concept the graph defines")
	_ = importCmd.MarkFlagRequired("concept")

	showCmd := &cobra.Command{
		Use:   "show <concept-uuid>",
		Short: "Show the latest stated logic graph of a concept",
		Args:  cobra.ExactArgs(1),
		Long: `Show the latest stated logic graph of a concept.

The default rendering is one node per line with its index and payload.
--simple renders the graph as nested builder calls; --yaml prints the
importable YAML document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraphShow(opts, args[0], cmd)
		},
	}
	showCmd.Flags().BoolVar(&opts.Simple, "simple", false, "render as nested builder calls")
	showCmd.Flags().BoolVar(&opts.YAML, "yaml", false, "print the YAML document")
	showCmd.MarkFlagsMutuallyExclusive("simple", "yaml")

	refsCmd := &cobra.Command{
		Use:           "refs <concept-uuid>",
		Short:         "List the concepts whose stated graphs reference a concept",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraphRefs(opts, args[0], cmd)
		},
	}

	reindexCmd := &cobra.Command{
		Use:           "reindex",
		Short:         "Rebuild the concept reference index of every logic graph",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraphReindex(opts, cmd)
		},
	}

	cmd.AddCommand(importCmd, showCmd, refsCmd, reindexCmd)
	return cmd
}

func runGraphImport(opts *GraphOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	conceptUUID, err := uuid.Parse(opts.Concept)
	if err != nil {
		return formatter.FailCode(ErrCodeInvalidUUID, fmt.Sprintf("invalid concept uuid %q", opts.Concept))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return formatter.FailCode(ErrCodeNotFound, fmt.Sprintf("reading graph: %v", err))
	}
	external, err := logic.DecodeYAML(data)
	if err != nil {
		_ = formatter.Error(ErrCodeBadGraph, fmt.Sprintf("%s: %v", path, err), nil)
		return WrapExitError(ExitFailure, "invalid logic graph", err)
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail("open store", err)
	}
	defer st.Close()

	concept, err := ensureConcept(st, conceptUUID)
	if err != nil {
		return formatter.Fail("register concept", err)
	}
	for _, u := range external.ConceptsReferenced().Sorted() {
		if _, err := ensureConcept(st, u); err != nil {
			return formatter.Fail("register referenced concept", err)
		}
	}
	internal, err := logic.Internalize(external, st)
	if err != nil {
		return formatter.Fail("internalize graph", err)
	}

	stated, err := st.NidForUUIDs(metadata.StatedLogicGraph)
	if err != nil {
		return formatter.Fail("resolve stated assemblage", err)
	}
	nid, err := st.WriteSemantic(cmd.Context(), schema.Record{
		Primordial: statedGraphUUID(conceptUUID),
		Assemblage: stated,
		Referenced: concept,
		Payload:    &chronology.LogicGraphVersion{Expression: internal},
	})
	if err != nil {
		return formatter.Fail("write graph", err)
	}
	formatter.VerboseLog("Wrote stated graph of %s as semantic %d", conceptUUID, nid)

	view, err := graphView(cmd, st, conceptUUID, concept, stated, "")
	if err != nil {
		return formatter.Fail("read back graph", err)
	}
	return formatter.Success(view)
}

func runGraphShow(opts *GraphOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	conceptUUID, err := uuid.Parse(arg)
	if err != nil {
		return formatter.FailCode(ErrCodeInvalidUUID, fmt.Sprintf("invalid concept uuid %q", arg))
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail("open store", err)
	}
	defer st.Close()

	concept, err := st.NidForUUIDs(conceptUUID)
	if err != nil {
		return formatter.Fail(fmt.Sprintf("resolve concept %s", conceptUUID), err)
	}
	stated, err := st.NidForUUIDs(metadata.StatedLogicGraph)
	if err != nil {
		return formatter.Fail("resolve stated assemblage", err)
	}

	mode := "verbose"
	switch {
	case opts.Simple:
		mode = "simple"
	case opts.YAML:
		mode = "yaml"
	}
	view, err := graphView(cmd, st, conceptUUID, concept, stated, mode)
	if err != nil {
		return formatter.Fail(fmt.Sprintf("show graph of %s", conceptUUID), err)
	}
	if view == nil {
		return formatter.FailCode(ErrCodeNoLogicGraph, fmt.Sprintf("concept %s has no stated logic graph", conceptUUID))
	}
	if opts.YAML && formatter.Format != config.FormatJSON {
		fmt.Fprint(formatter.Writer, view.Rendering)
		return nil
	}
	return formatter.Success(view)
}

func runGraphRefs(opts *GraphOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	conceptUUID, err := uuid.Parse(arg)
	if err != nil {
		return formatter.FailCode(ErrCodeInvalidUUID, fmt.Sprintf("invalid concept uuid %q", arg))
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail("open store", err)
	}
	defer st.Close()

	concept, err := st.NidForUUIDs(conceptUUID)
	if err != nil {
		return formatter.Fail(fmt.Sprintf("resolve concept %s", conceptUUID), err)
	}

	ctx := cmd.Context()
	semantics, err := st.LogicGraphsReferencing(ctx, concept)
	if err != nil {
		return formatter.Fail("query logic graph refs", err)
	}

	view := RefsView{Concept: conceptUUID.String(), Referencing: []string{}}
	for _, nid := range semantics {
		c, found, err := st.ReadChronology(ctx, nid)
		if err != nil {
			return formatter.Fail("read logic graph", err)
		}
		if !found {
			continue
		}
		u, err := st.PrimordialUUID(c.ReferencedComponent())
		if err != nil {
			return formatter.Fail("resolve defined concept", err)
		}
		view.Referencing = append(view.Referencing, u.String())
	}
	return formatter.Success(view)
}

func runGraphReindex(opts *GraphOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail("open store", err)
	}
	defer st.Close()

	n, err := st.RebuildLogicGraphRefs(cmd.Context())
	if err != nil {
		return formatter.Fail("rebuild logic graph refs", err)
	}
	if formatter.Format == config.FormatJSON {
		return formatter.Success(map[string]int{"graphs": n})
	}
	fmt.Fprintf(formatter.Writer, "✓ Reindexed %d logic graph(s)\n", n)
	return nil
}

// statedGraphUUID is the primordial UUID of the stated graph semantic of a
// concept, so every import for the concept versions the same semantic.
func statedGraphUUID(concept uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(metadata.StatedLogicGraph, concept[:])
}

// ensureConcept returns the nid of u, registering it as a concept when the
// store has never seen it. Existing components keep their object type.
func ensureConcept(st *store.Store, u uuid.UUID) (ids.Nid, error) {
	nid, err := st.NidForUUIDs(u)
	if err == nil {
		return nid, nil
	}
	if !ids.IsUnknown(err) {
		return 0, err
	}
	return st.AssignNid(ids.ObjectConcept, u)
}

// graphView reads the latest stated graph of concept. It returns nil when
// the concept has none. mode selects the rendering; empty renders nothing.
func graphView(cmd *cobra.Command, st *store.Store, conceptUUID uuid.UUID, concept, stated ids.Nid, mode string) (*GraphView, error) {
	chronologies, err := st.ChronologiesFor(cmd.Context(), concept, stated)
	if err != nil {
		return nil, err
	}
	for _, c := range chronologies {
		v, ok := c.Latest(st.Registry())
		if !ok {
			continue
		}
		lg, ok := v.Payload.(*chronology.LogicGraphVersion)
		if !ok {
			continue
		}
		external, err := logic.Externalize(lg.Expression, st)
		if err != nil {
			return nil, err
		}
		graphUUID, err := external.UUID(st)
		if err != nil {
			return nil, err
		}
		view := &GraphView{
			Concept:  conceptUUID.String(),
			Semantic: c.Nid(),
			Graph:    graphUUID.String(),
			Nodes:    external.Len(),
			Versions: c.Len(),
		}
		switch mode {
		case "verbose":
			view.Rendering = external.String()
		case "simple":
			view.Rendering = external.SimpleString()
		case "yaml":
			out, err := logic.EncodeYAML(external)
			if err != nil {
				return nil, err
			}
			view.Rendering = string(out)
		}
		return view, nil
	}
	return nil, nil
}
