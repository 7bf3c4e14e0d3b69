package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/termstore/internal/chronology"
	"github.com/roach88/termstore/internal/dyndata"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/schema"
)

// ColumnView is the printable form of one column.
type ColumnView struct {
	Order      int      `json:"order"`
	Label      string   `json:"label"`
	Name       string   `json:"name,omitempty"`
	Type       string   `json:"type"`
	Default    string   `json:"default,omitempty"`
	Required   bool     `json:"required"`
	Validators []string `json:"validators,omitempty"`
}

// SchemaView is the printable form of a usage description.
type SchemaView struct {
	Assemblage  string       `json:"assemblage"`
	Nid         ids.Nid      `json:"nid"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	VersionType string       `json:"version_type"`
	Restriction string       `json:"restriction,omitempty"`
	Columns     []ColumnView `json:"columns"`
}

func newSchemaView(u uuid.UUID, d *schema.UsageDescription) SchemaView {
	v := SchemaView{
		Assemblage:  u.String(),
		Nid:         d.Assemblage,
		Name:        d.Name,
		Description: d.Description,
		VersionType: d.VersionType.String(),
		Columns:     []ColumnView{},
	}
	if d.RestrictionType != ids.ObjectUnknown {
		v.Restriction = d.RestrictionType.String()
		if d.RestrictionSubtype != chronology.Unknown {
			v.Restriction += "/" + d.RestrictionSubtype.String()
		}
	}
	for _, c := range d.Columns {
		cv := ColumnView{
			Order:    c.Order,
			Label:    c.Label.String(),
			Name:     c.Name,
			Type:     c.Type.String(),
			Required: c.Required,
		}
		if c.Default != nil {
			cv.Default = dyndata.Format(c.Default)
		}
		for i, vt := range c.Validators {
			s := vt.String()
			if i < len(c.ValidatorData) && c.ValidatorData[i] != nil {
				s += " " + dyndata.Format(c.ValidatorData[i])
			}
			cv.Validators = append(cv.Validators, s)
		}
		v.Columns = append(v.Columns, cv)
	}
	return v
}

func (v SchemaView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Assemblage %s (nid %d)\n", v.Assemblage, v.Nid)
	if v.Name != "" {
		fmt.Fprintf(&sb, "  name:        %s\n", v.Name)
	}
	if v.Description != "" {
		fmt.Fprintf(&sb, "  description: %s\n", v.Description)
	}
	fmt.Fprintf(&sb, "  type:        %s\n", v.VersionType)
	if v.Restriction != "" {
		fmt.Fprintf(&sb, "  restriction: %s\n", v.Restriction)
	}
	fmt.Fprintf(&sb, "  columns:     %d\n", len(v.Columns))
	for _, c := range v.Columns {
		name := c.Name
		if name == "" {
			name = c.Label
		}
		fmt.Fprintf(&sb, "    %d %s %s", c.Order, name, c.Type)
		if c.Required {
			sb.WriteString(" required")
		}
		if c.Default != "" {
			fmt.Fprintf(&sb, " default=%s", c.Default)
		}
		for _, val := range c.Validators {
			fmt.Fprintf(&sb, " [%s]", val)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema <assemblage-uuid>",
		Short: "Show the usage description of an assemblage",
		Long: `Show the column layout of an assemblage.

The description is read from the assemblage's dynamic definition when it
has one. Otherwise it is synthesized from the assemblage's semantic type
metadata, or from the version type of its first member.

Examples:
  termstore schema 6b0c3e2a-7d4f-5c0e-9a55-3a1c2d7e8f01
  termstore schema 6b0c3e2a-7d4f-5c0e-9a55-3a1c2d7e8f01 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runSchema(opts *RootOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	u, err := uuid.Parse(arg)
	if err != nil {
		return formatter.FailCode(ErrCodeInvalidUUID, fmt.Sprintf("invalid assemblage uuid %q", arg))
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail("open store", err)
	}
	defer st.Close()

	nid, err := st.NidForUUIDs(u)
	if err != nil {
		return formatter.Fail(fmt.Sprintf("resolve assemblage %s", u), err)
	}

	cache, err := opts.newCache(st)
	if err != nil {
		return formatter.Fail("create schema cache", err)
	}
	d, err := cache.Get(cmd.Context(), nid)
	if err != nil {
		return formatter.Fail(fmt.Sprintf("read schema of %s", u), err)
	}

	return formatter.Success(newSchemaView(u, d))
}
