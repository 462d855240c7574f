package kv

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/pkg/errors"
)

// Records are stored as plain JSON. The canonical per-court hash is already
// defined over a canonical JSON form, so a second value encoding would only
// obscure what the hashes cover.

func encode(_ context.Context, v interface{}) ([]byte, error) {
	if v == nil || (reflect.ValueOf(v).Kind() == reflect.Ptr && reflect.ValueOf(v).IsNil()) {
		return nil, errors.New("cannot encode nil value")
	}
	return json.Marshal(v)
}

func decode(_ context.Context, data []byte, dst interface{}) error {
	if len(data) == 0 {
		return errors.New("cannot decode empty data")
	}
	return json.Unmarshal(data, dst)
}
