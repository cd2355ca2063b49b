package api

import (
	"github.com/tidwall/gjson"

	"github.com/skillsync/skillsync/internal/session"
)

func parseTokenResponse(body []byte) (TokenResponse, error) {
	if !gjson.ValidBytes(body) {
		return TokenResponse{}, malformed("body is not json")
	}
	res := gjson.ParseBytes(body)

	token, err := requiredString(res, "access_token")
	if err != nil {
		return TokenResponse{}, err
	}
	userID, err := requiredString(res, "user_id")
	if err != nil {
		return TokenResponse{}, err
	}
	role, err := requiredRole(res, "role")
	if err != nil {
		return TokenResponse{}, err
	}
	profileComplete, err := optionalBool(res, "profile_complete")
	if err != nil {
		return TokenResponse{}, err
	}
	swotComplete, err := optionalBool(res, "swot_complete")
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:     token,
		UserID:          userID,
		Role:            role,
		ProfileComplete: profileComplete,
		SWOTComplete:    swotComplete,
	}, nil
}

func parseIdentity(body []byte) (Identity, error) {
	if !gjson.ValidBytes(body) {
		return Identity{}, malformed("body is not json")
	}
	res := gjson.ParseBytes(body)

	if !res.Get("user").IsObject() {
		return Identity{}, malformed("user")
	}

	id, err := requiredString(res, "user.id")
	if err != nil {
		return Identity{}, err
	}
	email, err := requiredString(res, "user.email")
	if err != nil {
		return Identity{}, err
	}
	role, err := requiredRole(res, "user.role")
	if err != nil {
		return Identity{}, err
	}
	profileComplete, err := optionalBool(res, "profile_complete")
	if err != nil {
		return Identity{}, err
	}
	swotComplete, err := optionalBool(res, "swot_complete")
	if err != nil {
		return Identity{}, err
	}

	return Identity{
		ID:              id,
		Email:           email,
		Role:            role,
		ProfileComplete: profileComplete,
		SWOTComplete:    swotComplete,
	}, nil
}

func requiredString(res gjson.Result, path string) (string, error) {
	v := res.Get(path)
	if v.Type != gjson.String || v.String() == "" {
		return "", malformed(path)
	}
	return v.String(), nil
}

func requiredRole(res gjson.Result, path string) (session.Role, error) {
	s, err := requiredString(res, path)
	if err != nil {
		return "", err
	}
	role := session.Role(s)
	if !role.Valid() {
		return "", malformed(path)
	}
	return role, nil
}

// optionalBool reads a boolean that may be absent or null (false).
func optionalBool(res gjson.Result, path string) (bool, error) {
	v := res.Get(path)
	switch v.Type {
	case gjson.Null:
		return false, nil
	case gjson.True:
		return true, nil
	case gjson.False:
		return false, nil
	}
	return false, malformed(path)
}
