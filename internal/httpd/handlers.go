package httpd

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/nyxlabs/userd/internal/repository"
	"github.com/nyxlabs/userd/internal/service/user"
)

// resource translates parsed requests into user service calls. Each
// handler performs exactly one storage operation and maps its outcome
// to a status code and JSON payload.
type resource struct {
	users user.Service
}

func newRouter(users user.Service) *router {
	res := &resource{users: users}
	rt := &router{}
	rt.add("POST", "/users", res.createUser)
	rt.add("GET", "/users", res.listUsers)
	rt.add("GET", "/users/{id}", res.getUser)
	rt.add("PUT", "/users/{id}", res.updateUser)
	rt.add("DELETE", "/users/{id}", res.deleteUser)
	return rt
}

func (res *resource) createUser(ctx context.Context, req *Request, _ params) (int, any) {
	input, ok := decodeInput(req.Body)
	if !ok {
		return 400, errorBody("invalid JSON body")
	}
	u, err := res.users.Create(ctx, input)
	if err != nil {
		return mapServiceError(err)
	}
	return 200, u
}

func (res *resource) listUsers(ctx context.Context, req *Request, _ params) (int, any) {
	users, err := res.users.List(ctx)
	if err != nil {
		return mapServiceError(err)
	}
	return 200, users
}

func (res *resource) getUser(ctx context.Context, req *Request, ps params) (int, any) {
	id, ok := parseID(ps)
	if !ok {
		return 400, errorBody("invalid user id")
	}
	u, err := res.users.Get(ctx, id)
	if err != nil {
		return mapServiceError(err)
	}
	return 200, u
}

func (res *resource) updateUser(ctx context.Context, req *Request, ps params) (int, any) {
	id, ok := parseID(ps)
	if !ok {
		return 400, errorBody("invalid user id")
	}
	input, decoded := decodeInput(req.Body)
	if !decoded {
		return 400, errorBody("invalid JSON body")
	}
	u, err := res.users.Update(ctx, id, input)
	if err != nil {
		return mapServiceError(err)
	}
	return 200, u
}

func (res *resource) deleteUser(ctx context.Context, req *Request, ps params) (int, any) {
	id, ok := parseID(ps)
	if !ok {
		return 400, errorBody("invalid user id")
	}
	if err := res.users.Delete(ctx, id); err != nil {
		return mapServiceError(err)
	}
	return 200, map[string]string{"status": "deleted"}
}

func decodeInput(body []byte) (user.Input, bool) {
	var input user.Input
	if len(body) == 0 {
		return input, false
	}
	if err := json.Unmarshal(body, &input); err != nil {
		return input, false
	}
	return input, true
}

// parseID converts the bound {id} segment. A non-integer id is a client
// error, never a lookup miss.
func parseID(ps params) (int64, bool) {
	raw, ok := ps["id"]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func mapServiceError(err error) (int, any) {
	switch {
	case user.IsValidationError(err):
		return 400, errorBody(err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return 404, errorBody("user not found")
	default:
		return 500, errorBody("internal server error")
	}
}
