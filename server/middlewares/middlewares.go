package middlewares

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	ErrorTokenAuthFail = 40001
)

// TokenVerifier validates an access token and returns the subject (user id)
// it was issued for. Wallet/phone authentication and JWT issuance are owned
// by the external auth service; this service only verifies.
type TokenVerifier interface {
	Verify(token string) (sub string, err error)
}

var (
	// verifier performs user authorization based on the bearer token. Before
	// any middleware is used, make sure it's initialized via Setup.
	verifier TokenVerifier
)

// Setup initializes all package scoped variables that are needed to perform
// middleware functionalities. This function must be called before any
// middleware is used.
func Setup(v TokenVerifier) {
	verifier = v
}

// NewAuthServiceVerifier builds the default verifier, which calls the
// external auth service's verification endpoint (AUTH_VERIFY_URL).
func NewAuthServiceVerifier() TokenVerifier {
	return &authServiceVerifier{
		endpoint: os.Getenv("AUTH_VERIFY_URL"),
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

type authServiceVerifier struct {
	endpoint string
	client   *http.Client
}

func (v *authServiceVerifier) Verify(token string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, v.endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	var body struct {
		UserId string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.UserId == "" {
		return "", fmt.Errorf("auth service returned empty user id")
	}
	return body.UserId, nil
}

// JWT middleware fetches the user token from the "token" query param, asks
// the verifier for the subject, and stores it in a new "sub" header. It
// returns error on token not provided or token is invalid (wrong token or
// expired).
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		jwt := c.Query("token")

		if jwt == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": ErrorTokenAuthFail,
				"msg":  "empty jwt token",
			})
			c.Abort()
			return
		}

		sub, err := verifier.Verify(jwt)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": ErrorTokenAuthFail,
				"msg":  err.Error(),
			})
			c.Abort()
			return
		}

		// Successfully validated the token, replace the header field "token"
		// with the user's sub (id).
		c.Request.Header.Del("token")
		c.Request.Header.Add("sub", sub)

		// before request
		c.Next()
	}
}
