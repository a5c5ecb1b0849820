package configerr

import (
	"reflect"
	"time"
)

func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case time.Duration:
		return int64(v), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		switch {
		case f > 0:
			return 1, true
		case f < 0:
			return -1, true
		}
		return 0, true
	}
	return 0, false
}
