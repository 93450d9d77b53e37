// Package query provides SQL query building utilities with projection mapping.
package query

import "strings"

// ProjectionMap maps view property names to qualified column references (alias.column).
// View names double as the public sort keys, so only projected names are sortable.
type ProjectionMap struct {
	table   string
	alias   string
	entries []projected
	index   map[string]int
}

type projected struct {
	view      string
	qualified string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		table: schema + "." + table,
		alias: alias,
		index: make(map[string]int),
	}
}

// Project adds a column mapping from database column to view property name.
// Projecting a view name twice replaces its column in place.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	entry := projected{view: viewName, qualified: p.alias + "." + column}
	if i, ok := p.index[viewName]; ok {
		p.entries[i] = entry
		return p
	}
	p.index[viewName] = len(p.entries)
	p.entries = append(p.entries, entry)
	return p
}

// From returns the fully qualified table reference with alias (schema.table alias).
func (p *ProjectionMap) From() string {
	return p.table + " " + p.alias
}

// Has reports whether viewName is a projected property.
func (p *ProjectionMap) Has(viewName string) bool {
	_, ok := p.index[viewName]
	return ok
}

// Column returns the qualified column for a view property name, or the input if not mapped.
func (p *ProjectionMap) Column(viewName string) string {
	if i, ok := p.index[viewName]; ok {
		return p.entries[i].qualified
	}
	return viewName
}

// Columns returns all mapped columns, in projection order, as a comma-separated string.
func (p *ProjectionMap) Columns() string {
	cols := make([]string, len(p.entries))
	for i, e := range p.entries {
		cols[i] = e.qualified
	}
	return strings.Join(cols, ", ")
}

// JoinOn returns "<other table> ON <other column> = <own column>", joining
// other to this projection through the given view names.
func (p *ProjectionMap) JoinOn(other *ProjectionMap, otherView, ownView string) string {
	return other.From() + " ON " + other.Column(otherView) + " = " + p.Column(ownView)
}
