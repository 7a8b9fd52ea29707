package authorize

import (
	"fmt"
	"os"

	"github.com/casbin/casbin/v2/model"
)

// DefaultModel is used when no model file is configured. "manage" on a
// resource grants every action on it.
const DefaultModel = `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act, eft

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = g(r.sub, p.sub, r.dom) && (p.dom == "*" || p.dom == r.dom) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || p.act == "manage" || r.act == p.act)
`

// LoadModel reads the model from path, falling back to DefaultModel when the
// path is empty.
func LoadModel(path string) (model.Model, error) {
	if path == "" {
		return model.NewModelFromString(DefaultModel)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("casbin model %q: %w", path, err)
	}
	return model.NewModelFromFile(path)
}
