package hilt

import (
	"fmt"
	"io"
	"os"
	"strings"
)

type GraphInfo struct {
	Services []ServiceInfo
}

type ServiceInfo struct {
	Key          string
	Dependencies []string
	Dependents   []string
	Instantiated bool
	Scope        string
	Alias        bool

	// Seq is the construction position, zero until the service is built.
	Seq uint64
}

func (c *Container) Graph() GraphInfo {
	graph := c.internal.Graph()

	seqs := make(map[string]uint64)
	for _, entry := range c.internal.Ledger() {
		seqs[entry.Key] = entry.Seq
	}

	keys := c.internal.Keys()
	services := make([]ServiceInfo, 0, len(keys))
	for _, key := range keys {
		info := ServiceInfo{
			Key:          key,
			Dependencies: graph.Dependencies(key),
			Dependents:   graph.Dependents(key),
			Seq:          seqs[key],
		}
		_, info.Instantiated = c.internal.GetInstance(key)

		if entry, ok := c.internal.Entry(key); ok {
			info.Scope = entry.Scope.String()
			info.Alias = entry.Alias
			if entry.Alias {
				info.Scope = "alias"
			}
		}

		services = append(services, info)
	}

	return GraphInfo{Services: services}
}

func (c *Container) PrintGraph() {
	c.FprintGraph(os.Stdout)
}

func (c *Container) FprintGraph(w io.Writer) {
	info := c.Graph()

	if len(info.Services) == 0 {
		_, _ = fmt.Fprintln(w, "(empty container)")
		return
	}

	for _, svc := range info.Services {
		status := "○"
		if svc.Instantiated {
			status = "●"
		}

		if len(svc.Dependencies) == 0 {
			_, _ = fmt.Fprintf(w, "%s %s\n", status, svc.Key)
		} else {
			_, _ = fmt.Fprintf(w, "%s %s ← %s\n", status, svc.Key, strings.Join(svc.Dependencies, ", "))
		}
	}
}

func (c *Container) SprintGraph() string {
	var sb strings.Builder
	c.FprintGraph(&sb)
	return sb.String()
}

func (c *Container) PrintGraphDOT() {
	c.FprintGraphDOT(os.Stdout)
}

func (c *Container) FprintGraphDOT(w io.Writer) {
	info := c.Graph()

	_, _ = fmt.Fprintln(w, "digraph dependencies {")
	_, _ = fmt.Fprintln(w, "  rankdir=LR;")
	_, _ = fmt.Fprintln(w, "  node [shape=box];")

	for _, svc := range info.Services {
		label := escapeLabel(svc.Key)
		if svc.Seq > 0 {
			label = fmt.Sprintf("%d: %s", svc.Seq, label)
		}
		style := ""
		if svc.Instantiated {
			style = ", style=filled, fillcolor=lightblue"
		}
		_, _ = fmt.Fprintf(w, "  %q [label=%q%s];\n", svc.Key, label, style)
	}

	_, _ = fmt.Fprintln(w)

	for _, svc := range info.Services {
		for _, dep := range svc.Dependencies {
			_, _ = fmt.Fprintf(w, "  %q -> %q;\n", svc.Key, dep)
		}
	}

	_, _ = fmt.Fprintln(w, "}")
}

func (c *Container) SprintGraphDOT() string {
	var sb strings.Builder
	c.FprintGraphDOT(&sb)
	return sb.String()
}

// FprintLedger writes the construction order, which is the order start hooks
// run in.
func (c *Container) FprintLedger(w io.Writer) {
	entries := c.Ledger()
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "(nothing constructed)")
		return
	}

	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%3d %s (start=%d stop=%d)\n", e.Seq, e.Key, e.OnStart, e.OnStop)
	}
}

func (c *Container) SprintLedger() string {
	var sb strings.Builder
	c.FprintLedger(&sb)
	return sb.String()
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "*", "")
	if idx := strings.LastIndex(s, "/"); idx != -1 {
		s = s[idx+1:]
	}
	return s
}
