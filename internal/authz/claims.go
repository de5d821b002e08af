package authz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
)

// UserFromClaims builds a back-end user from token claims. Used for
// principals that have no stored user record.
func UserFromClaims(claims map[string]any) (*jobs.User, error) {
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid subject claim %q", sub)
	}

	user := &jobs.User{
		ID:      id,
		Jobs:    ExtractIDs(claims, "jobs"),
		Jobp:    ExtractStrings(claims, "jobp"),
		Modules: ExtractStrings(claims, "modules"),
		Groups:  ExtractIDs(claims, "groups"),
	}
	user.Name, _ = claims["name"].(string)
	user.Admin, _ = claims["admin"].(bool)
	user.Inherit, _ = claims["inherit"].(string)
	if user.Inherit == "" {
		user.Inherit = InheritCustom
	}
	return user, nil
}

// MemberFromClaims builds a front-end member from the "sub" and
// "member_groups" claims. Nil claims give the anonymous member.
func MemberFromClaims(claims map[string]any) *jobs.Member {
	member := &jobs.Member{}
	if claims == nil {
		return member
	}
	if sub, ok := claims["sub"].(string); ok {
		member.ID, _ = strconv.ParseInt(sub, 10, 64)
	}
	member.Groups = ExtractIDs(claims, "member_groups")
	return member
}

// ExtractIDs reads an integer list claim. JSON numbers and numeric strings
// are accepted; anything else is skipped.
func ExtractIDs(claims map[string]any, key string) []int64 {
	raw, ok := claims[key].([]any)
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		switch v := v.(type) {
		case float64:
			ids = append(ids, int64(v))
		case int64:
			ids = append(ids, v)
		case int:
			ids = append(ids, int64(v))
		case string:
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// ExtractStrings reads a string list claim. A space separated string is
// accepted as well.
func ExtractStrings(claims map[string]any, key string) []string {
	switch v := claims[key].(type) {
	case string:
		return strings.Fields(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}
