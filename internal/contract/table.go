package contract

import (
	"fmt"
)

// Field is one declared parameter of a contract and its ordered rules.
type Field struct {
	Name  string
	Rules []Rule
}

// F declares a field whose rules are written in the compact grammar.
func F(name string, exprs ...string) Field {
	return Field{Name: name, Rules: Rules(exprs...)}
}

// Contract governs one endpoint: who may call it and how its parameters must
// be shaped. Fields are validated in declaration order.
type Contract struct {
	Endpoint string
	Access   Access
	Fields   []Field
}

// Endpoint declares a contract.
func Endpoint(name string, access Access, fields ...Field) Contract {
	return Contract{Endpoint: name, Access: access, Fields: fields}
}

// Table is the read-only contract registry of one controller. It is safe for
// concurrent use once built.
type Table struct {
	contracts map[string]*Contract
	order     []string
}

// NewTable builds a table. Empty or duplicate endpoint names, unknown access
// levels and duplicate fields are rejected.
func NewTable(contracts ...Contract) (*Table, error) {
	t := &Table{
		contracts: make(map[string]*Contract, len(contracts)),
		order:     make([]string, 0, len(contracts)),
	}
	for i := range contracts {
		c := contracts[i]
		if c.Endpoint == "" {
			return nil, fmt.Errorf("contract %d: empty endpoint name", i)
		}
		if _, dup := t.contracts[c.Endpoint]; dup {
			return nil, fmt.Errorf("contract %q: duplicate endpoint", c.Endpoint)
		}
		switch c.Access {
		case Public, User, Admin:
		default:
			return nil, fmt.Errorf("contract %q: unknown access level %d", c.Endpoint, c.Access)
		}

		seen := make(map[string]struct{}, len(c.Fields))
		fields := make([]Field, len(c.Fields))
		for j, f := range c.Fields {
			if f.Name == "" {
				return nil, fmt.Errorf("contract %q: field %d has no name", c.Endpoint, j)
			}
			if _, dup := seen[f.Name]; dup {
				return nil, fmt.Errorf("contract %q: duplicate field %q", c.Endpoint, f.Name)
			}
			seen[f.Name] = struct{}{}
			fields[j] = Field{Name: f.Name, Rules: append([]Rule(nil), f.Rules...)}
		}
		c.Fields = fields

		t.contracts[c.Endpoint] = &c
		t.order = append(t.order, c.Endpoint)
	}
	return t, nil
}

// MustTable is NewTable for static tables; it panics on error.
func MustTable(contracts ...Contract) *Table {
	t, err := NewTable(contracts...)
	if err != nil {
		// ALLOW-PANIC: contract tables are static and built before serving
		panic(err)
	}
	return t
}

// Lookup returns the contract of endpoint.
func (t *Table) Lookup(endpoint string) (*Contract, bool) {
	c, ok := t.contracts[endpoint]
	return c, ok
}

// Endpoints lists the endpoint names in declaration order.
func (t *Table) Endpoints() []string {
	return append([]string(nil), t.order...)
}
