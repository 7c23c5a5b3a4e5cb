package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors turns a binding error into a field -> message tree.
// Nested struct fields become nested maps, e.g. {"shipping_address": {"district": "is required"}}.
// The second return is false when err is not a validator error (malformed JSON and the like).
func ValidationErrors(err error) (map[string]interface{}, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	tree := map[string]interface{}{}
	for _, fe := range verrs {
		path := strings.Split(fe.Namespace(), ".")
		if len(path) > 1 {
			path = path[1:]
		}
		insert(tree, path, fieldMessage(fe))
	}
	return tree, true
}

func insert(tree map[string]interface{}, path []string, msg string) {
	key := toSnake(path[0])
	if len(path) == 1 {
		tree[key] = msg
		return
	}
	child, ok := tree[key].(map[string]interface{})
	if !ok {
		child = map[string]interface{}{}
		tree[key] = child
	}
	insert(child, path[1:], msg)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "email":
		return "must be a valid email"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
