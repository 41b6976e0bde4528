package helpers

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"
	"testing"

	"github.com/authorizerdev/authorizer-go"
)

func randInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// GeneratePassword generates a 10 character password that satisfies the
// Authorizer strength policy (upper, special and numeric characters).
func GeneratePassword() string {
	const (
		lower   = "abcdefghijklmnopqrstuvwxyz"
		upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		special = "!@#$%^&*"
		numbers = "0123456789"
		all     = lower + upper + special + numbers
	)

	password := make([]byte, 10)
	password[0] = upper[randInt(len(upper))]
	password[1] = special[randInt(len(special))]
	password[2] = numbers[randInt(len(numbers))]
	for i := 3; i < len(password); i++ {
		password[i] = all[randInt(len(all))]
	}
	for i := range password {
		j := randInt(len(password))
		password[i], password[j] = password[j], password[i]
	}

	return string(password)
}

// AcquireAccount signs the user up with the given roles, ignoring the
// already-registered error so accounts can be reused across tests.
func AcquireAccount(t *testing.T, authzURL, email, password string, roles []string) {
	client, err := authorizer.NewAuthorizerClient("test_client", authzURL, "", nil)
	if err != nil {
		t.Fatalf("Failed to create authorizer client: %v", err)
	}

	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	_, err = client.SignUp(&authorizer.SignUpInput{
		Email:           &email,
		Password:        password,
		ConfirmPassword: password,
		Roles:           rolesPtrs,
	})
	if err != nil {
		t.Logf("Signup failed (account may already exist): %v", err)
	}
}

// AcquireSessionCookie logs the user in over the Authorizer GraphQL
// endpoint and returns the session cookie the service middleware expects.
// The SDK login call discards response headers, so the mutation is posted
// directly.
func AcquireSessionCookie(t *testing.T, authzURL, email, password string) *http.Cookie {
	payload, err := json.Marshal(map[string]interface{}{
		"query": `mutation login($params: LoginInput!) { login(params: $params) { access_token } }`,
		"variables": map[string]interface{}{
			"params": map[string]string{
				"email":    email,
				"password": password,
			},
		},
	})
	if err != nil {
		t.Fatalf("Failed to marshal login mutation: %v", err)
	}

	resp, err := http.Post(authzURL+"/graphql", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Login request failed: %v", err)
	}
	defer resp.Body.Close()

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "cookie_session" {
			return cookie
		}
	}

	t.Fatalf("Login response did not set a session cookie (status %d)", resp.StatusCode)
	return nil
}
