package stdlib

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/minqlang/minq/pkg/minq/evaluator"
)

var sqlArgTypes = evaluator.Types(
	evaluator.NULL_OBJ, evaluator.BOOLEAN_OBJ, evaluator.NUMBER_OBJ, evaluator.STRING_OBJ,
)

func dbModule(opts Options) *evaluator.Module {
	m := evaluator.NewModule("db")

	m.Define("open", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, twoStrings()) {
			return evaluator.InvalidArgs(env, "open")
		}
		name, dsn := stringArg(args, 0), stringArg(args, 1)
		driver, ok := sqlDrivers[name]
		if !ok {
			return fail(env, "DB-0001", "open", fmt.Errorf("unsupported driver %q (use sqlite, postgres or mysql)", name))
		}

		key := driver + ":" + dsn
		db, found := dbCache.get(key)
		if !found {
			var err error
			db, err = openDB(driver, dsn, opts)
			if err != nil {
				return fail(env, "DB-0001", "open", err)
			}
			dbCache.put(key, db)
		}
		return newConnection(db, key)
	})

	return m
}

func openDB(driver, dsn string, opts Options) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	switch {
	case driver == "sqlite":
		// one connection keeps :memory: databases and write locks coherent
		db.SetMaxOpenConns(1)
	case opts.MaxOpenConns > 0:
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// newConnection wraps a pool as a script object with query, exec and close.
func newConnection(db *sql.DB, key string) *evaluator.Dictionary {
	conn := evaluator.NewDictionary()

	conn.Set("query", evaluator.NewNativeFunction("query", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, oneString(), evaluator.Param{Types: sqlArgTypes, Count: evaluator.Unlimited}) {
			return evaluator.InvalidArgs(env, "query")
		}
		result, err := query(env, db, stringArg(args, 0), sqlArgs(args[1:]))
		if err != nil {
			return fail(env, "DB-0001", "query", err)
		}
		return result
	}))

	conn.Set("exec", evaluator.NewNativeFunction("exec", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, oneString(), evaluator.Param{Types: sqlArgTypes, Count: evaluator.Unlimited}) {
			return evaluator.InvalidArgs(env, "exec")
		}
		res, err := db.ExecContext(env.Runtime().Context(), stringArg(args, 0), sqlArgs(args[1:])...)
		if err != nil {
			return fail(env, "DB-0001", "exec", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fail(env, "DB-0001", "exec", err)
		}
		return num(float64(affected))
	}))

	conn.Set("close", evaluator.NewNativeFunction("close", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if len(args) != 0 {
			return evaluator.InvalidArgs(env, "close")
		}
		if err := dbCache.remove(key); err != nil {
			return fail(env, "DB-0001", "close", err)
		}
		return evaluator.NULL
	}))

	return conn
}

func query(env *evaluator.Environment, db *sql.DB, stmt string, args []any) (evaluator.Object, error) {
	rows, err := db.QueryContext(env.Runtime().Context(), stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &evaluator.List{Elements: []evaluator.Object{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := evaluator.NewDictionary()
		for i, col := range columns {
			row.Set(col, fromSQLValue(values[i]))
		}
		result.Elements = append(result.Elements, row)
	}
	return result, rows.Err()
}

// sqlArgs converts script values to driver arguments. Integral numbers are
// passed as int64 so integer columns compare as expected.
func sqlArgs(args []evaluator.Object) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		switch arg := arg.(type) {
		case *evaluator.Boolean:
			out[i] = arg.Value
		case *evaluator.Number:
			if arg.Value == math.Trunc(arg.Value) && math.Abs(arg.Value) < 1<<53 {
				out[i] = int64(arg.Value)
			} else {
				out[i] = arg.Value
			}
		case *evaluator.String:
			out[i] = arg.Value
		default:
			out[i] = nil
		}
	}
	return out
}

func fromSQLValue(v any) evaluator.Object {
	switch v := v.(type) {
	case nil:
		return evaluator.NULL
	case int64:
		return num(float64(v))
	case float64:
		return num(v)
	case bool:
		return boolean(v)
	case []byte:
		return str(string(v))
	case string:
		return str(v)
	case time.Time:
		return str(v.Format(time.RFC3339Nano))
	}
	return str(fmt.Sprint(v))
}
