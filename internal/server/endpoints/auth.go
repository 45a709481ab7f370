package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/biaslens/biaslens/internal/api"
	"github.com/biaslens/biaslens/internal/auth"
	"github.com/biaslens/biaslens/internal/svcctx"
)

// CredentialsRequest is the request body for register and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// RegisterEndpoint handles POST /auth/register.
type RegisterEndpoint struct{}

func (e *RegisterEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/auth/register", e.handler
}

func (e *RegisterEndpoint) RequiresInit() bool { return true }

func (e *RegisterEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	authSvc := svcctx.AuthFrom(r.Context())
	if authSvc == nil {
		writeError(w, http.StatusServiceUnavailable, "auth service not initialized")
		return
	}

	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := authSvc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "username already taken")
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{UserID: userID, Username: req.Username})
}

func (e *RegisterEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "register <username> <password>",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp RegisterResponse
			req := CredentialsRequest{Username: args[0], Password: args[1]}
			if err := client.Post(cmd.Context(), "/auth/register", req, &resp); err != nil {
				return err
			}
			fmt.Printf("Created user %s (id %d)\n", resp.Username, resp.UserID)
			return nil
		},
	}
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token string `json:"token"`
}

// LoginEndpoint handles POST /auth/login.
type LoginEndpoint struct{}

func (e *LoginEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/auth/login", e.handler
}

func (e *LoginEndpoint) RequiresInit() bool { return true }

func (e *LoginEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	authSvc := svcctx.AuthFrom(r.Context())
	if authSvc == nil {
		writeError(w, http.StatusServiceUnavailable, "auth service not initialized")
		return
	}

	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func (e *LoginEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Log in and print a session token",
		Long: `Log in and print a session token.

Export the token so later commands authenticate automatically:
  export BIASLENS_TOKEN=$(biaslens api auth login alice secret | jq -r .token)`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp LoginResponse
			req := CredentialsRequest{Username: args[0], Password: args[1]}
			if err := client.Post(cmd.Context(), "/auth/login", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// LogoutEndpoint handles POST /auth/logout.
type LogoutEndpoint struct{}

func (e *LogoutEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/auth/logout", e.handler
}

func (e *LogoutEndpoint) RequiresInit() bool { return true }

func (e *LogoutEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	authSvc := svcctx.AuthFrom(r.Context())
	if authSvc == nil {
		writeError(w, http.StatusServiceUnavailable, "auth service not initialized")
		return
	}

	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}
	if err := authSvc.Logout(r.Context(), token); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (e *LogoutEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the current session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Post(cmd.Context(), "/auth/logout", nil, nil); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}
