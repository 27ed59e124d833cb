package mocks

import "context"

// UserVerifier answers VerifyUser from a fixed set of usernames.
type UserVerifier struct {
	VerifyUserFn func(ctx context.Context, userName string) (bool, error)

	Known map[string]bool
	Calls []string
}

// NewUserVerifier knows exactly the given usernames.
func NewUserVerifier(userNames ...string) *UserVerifier {
	known := make(map[string]bool, len(userNames))
	for _, name := range userNames {
		known[name] = true
	}
	return &UserVerifier{Known: known}
}

func (m *UserVerifier) VerifyUser(ctx context.Context, userName string) (bool, error) {
	m.Calls = append(m.Calls, userName)
	if m.VerifyUserFn != nil {
		return m.VerifyUserFn(ctx, userName)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return m.Known[userName], nil
}
