// Package key_value defines the map with the typed getters.
// The request parameters, reply parameters and configuration defaults
// are all passed around as a KeyValue.
package key_value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
)

// identical to the golang map
type KeyValue map[string]interface{}

// Converts the map to the key-value data type
func New(key_value map[string]interface{}) KeyValue {
	return KeyValue(key_value)
}

// Empty key-value without any parameters
func Empty() KeyValue {
	return KeyValue(map[string]interface{}{})
}

// Converts the s string with a json decoder into the key value
func NewFromString(s string) (KeyValue, error) {
	var key_value KeyValue

	decoder := json.NewDecoder(bytes.NewReader([]byte(s)))
	decoder.UseNumber()

	if err := decoder.Decode(&key_value); err != nil {
		return Empty(), fmt.Errorf("json.decoder: %w", err)
	}

	return key_value, nil
}

// Converts the data structure "body" to KeyValue.
// The body should be serializable with the json codec.
func NewFromInterface(body interface{}) (KeyValue, error) {
	byt, err := json.Marshal(body)
	if err != nil {
		return Empty(), fmt.Errorf("json.Marshal of %T: %w", body, err)
	}

	key_value, err := NewFromString(string(byt))
	if err != nil {
		return Empty(), fmt.Errorf("NewFromString: %w", err)
	}

	return key_value, nil
}

// Converts the key-value to the golang map
func (k KeyValue) ToMap() map[string]interface{} {
	return map[string]interface{}(k)
}

// Returns the serialized key-value as a series of bytes
func (k KeyValue) ToBytes() ([]byte, error) {
	byt, err := json.Marshal(k)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return byt, nil
}

// Returns the serialized key-value as a string
func (k KeyValue) ToString() (string, error) {
	byt, err := k.ToBytes()
	if err != nil {
		return "", fmt.Errorf("k.ToBytes: %w", err)
	}

	return string(byt), nil
}

// Converts the key-value to the given data structure.
// The data structure should be passed by a pointer.
func (k KeyValue) ToInterface(i interface{}) error {
	byt, err := k.ToBytes()
	if err != nil {
		return fmt.Errorf("k.ToBytes: %w", err)
	}

	err = json.Unmarshal(byt, i)
	if err != nil {
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return nil
}

// Set the parameter in the key-value. Returns the updated key-value.
func (k KeyValue) Set(name string, value interface{}) KeyValue {
	k[name] = value

	return k
}

// Returns the parameter as an uint64
func (parameters KeyValue) GetUint64(name string) (uint64, error) {
	raw, exists := parameters[name]
	if !exists {
		return 0, errors.New("missing '" + name + "' parameter in the Request")
	}

	pure_value, ok := raw.(uint64)
	if ok {
		return pure_value, nil
	}
	value, ok := raw.(json.Number)
	if !ok {
		float_value, ok := raw.(float64)
		if !ok {
			return 0, errors.New("parameter '" + name + "' expected to be as a number")
		}
		return uint64(float_value), nil
	}

	number, err := strconv.ParseUint(string(value), 10, 64)

	return number, err
}

func (parameters KeyValue) GetBoolean(name string) (bool, error) {
	raw, exists := parameters[name]
	if !exists {
		return false, errors.New("missing '" + name + "' parameter in the Request")
	}

	pure_value, ok := raw.(bool)
	if ok {
		return pure_value, nil
	}

	return false, errors.New("the '" + name + "' is not in a boolean format")
}

// Returns the parsed large number. If the number size is more than 64 bits.
func (parameters KeyValue) GetBigNumber(name string) (*big.Int, error) {
	raw, exists := parameters[name]
	if !exists {
		return nil, errors.New("missing '" + name + "' parameter in the Request")
	}

	value, ok := raw.(json.Number)
	if !ok {
		return nil, errors.New("parameter '" + name + "' expected to be as a number")
	}

	number, ok := math.ParseBig256(string(value))
	if !ok {
		return nil, errors.New("parameter '" + name + "' is not a big number")
	}

	return number, nil
}

// Returns the parameter as a string
func (parameters KeyValue) GetString(name string) (string, error) {
	raw, exists := parameters[name]
	if !exists {
		return "", errors.New("missing '" + name + "' parameter in the Request")
	}
	value, ok := raw.(string)
	if !ok {
		return "", errors.New("expected string type for '" + name + "' parameter")
	}

	return value, nil
}

// Returns list of strings
func (parameters KeyValue) GetStringList(name string) ([]string, error) {
	raw, exists := parameters[name]
	if !exists {
		return nil, errors.New("missing '" + name + "' parameter in the Request")
	}

	values, ok := raw.([]interface{})
	if !ok {
		ready_list, ok := raw.([]string)
		if !ok {
			return nil, errors.New("expected list type for '" + name + "' parameter")
		} else {
			return ready_list, nil
		}
	}

	list := make([]string, len(values))
	for i, raw_value := range values {
		v, ok := raw_value.(string)
		if !ok {
			return nil, errors.New("one of the elements in the parameter is not a string")
		}

		list[i] = v
	}

	return list, nil
}

// Returns the parameter as a list of key-values
func (parameters KeyValue) GetKeyValueList(name string) ([]KeyValue, error) {
	raw, exists := parameters[name]
	if !exists {
		return nil, errors.New("missing '" + name + "' parameter in the Request")
	}

	values, ok := raw.([]interface{})
	if !ok {
		ready_list, ok := raw.([]KeyValue)
		if !ok {
			return nil, errors.New("expected list type for '" + name + "' parameter")
		}
		return ready_list, nil
	}

	list := make([]KeyValue, len(values))
	for i, raw_value := range values {
		v, ok := raw_value.(map[string]interface{})
		if !ok {
			return nil, errors.New("one of the elements in the parameter is not a map")
		}

		list[i] = New(v)
	}

	return list, nil
}

// Returns the parameter as a nested key-value
func (parameters KeyValue) GetKeyValue(name string) (KeyValue, error) {
	raw, exists := parameters[name]
	if !exists {
		return nil, errors.New("missing '" + name + "' parameter in the Request")
	}

	value, ok := raw.(map[string]interface{})
	if !ok {
		nested, ok := raw.(KeyValue)
		if !ok {
			return nil, errors.New("expected map type for '" + name + "' parameter")
		}
		return nested, nil
	}

	return New(value), nil
}
