package report

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const timeLayout = "2006-01-02 15:04:05"

// identified is implemented by prefetched related records.
type identified interface {
	ID() string
}

// formatValue renders a cell value as text.
func formatValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int32:
		return strconv.FormatInt(int64(t), 10), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case time.Time:
		if t.IsZero() {
			return "", nil
		}
		return t.Format(timeLayout), nil
	case *time.Time:
		if t == nil || t.IsZero() {
			return "", nil
		}
		return t.Format(timeLayout), nil
	case primitive.DateTime:
		return t.Time().UTC().Format(timeLayout), nil
	case primitive.ObjectID:
		return t.Hex(), nil
	case identified:
		return t.ID(), nil
	case fmt.Stringer:
		return t.String(), nil
	case encoding.TextMarshaler:
		b, err := t.MarshalText()
		return string(b), err
	case error:
		return t.Error(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return "", fmt.Errorf("cannot format %s value", rv.Kind())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return "", nil
		}
		return formatValue(rv.Elem().Interface())
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return fmt.Sprint(v), nil
}
