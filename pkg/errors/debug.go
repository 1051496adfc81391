package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const maxChainDepth = 8

// DriverDetail carries the postgres fields of a driver error, whichever driver raised it.
type DriverDetail struct {
	Driver     string `json:"driver"`
	SQLState   string `json:"sqlstate"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// Trace is what gets logged for a failed request.
type Trace struct {
	Message string        `json:"message"`
	Code    Code          `json:"code,omitempty"`
	Chain   []string      `json:"chain,omitempty"`
	Driver  *DriverDetail `json:"driver,omitempty"`
}

// Fields flattens the trace for structured logging.
func (t Trace) Fields() map[string]any {
	fields := map[string]any{
		"error":       t.Message,
		"error_code":  t.Code,
		"error_chain": t.Chain,
	}
	if t.Driver != nil {
		fields["db_driver"] = t.Driver.Driver
		fields["db_sqlstate"] = t.Driver.SQLState
		fields["db_constraint"] = t.Driver.Constraint
		fields["db_table"] = t.Driver.Table
		fields["db_detail"] = t.Driver.Detail
	}
	return fields
}

func TraceOf(err error) Trace {
	if err == nil {
		return Trace{}
	}

	t := Trace{Message: err.Error(), Driver: driverDetail(err)}
	if typed := As(err); typed != nil {
		t.Code = typed.Code()
	}

	seen := map[string]struct{}{}
	for e, depth := err, 0; e != nil && depth < maxChainDepth; e, depth = errors.Unwrap(e), depth+1 {
		link := fmt.Sprintf("%T: %v", e, e)
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		t.Chain = append(t.Chain, link)
	}
	return t
}

func driverDetail(err error) *DriverDetail {
	if pgxErr := (*pgconn.PgError)(nil); errors.As(err, &pgxErr) {
		return &DriverDetail{
			Driver:     "pgx",
			SQLState:   pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Detail:     pgxErr.Detail,
		}
	}
	if pqErr := (*pq.Error)(nil); errors.As(err, &pqErr) {
		return &DriverDetail{
			Driver:     "pq",
			SQLState:   string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Detail:     pqErr.Detail,
		}
	}
	return nil
}
