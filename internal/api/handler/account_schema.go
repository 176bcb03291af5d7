package handler

import "github.com/safestreet/account-service/internal/core/domain"

// --- Request / Response types ---

type signupRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type signupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type loginRequest struct {
	// Identifier is either the unique name or the unique email.
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}

type loginResponse struct {
	Token string               `json:"token"`
	User  domain.PublicProfile `json:"user"`
}

// verifiedPageHTML is the confirmation page rendered after a successful
// email verification. Served to a browser following the emailed link, not
// to the API clients.
const verifiedPageHTML = `<html>
    <head>
        <style>
            body {
                font-family: 'Arial', sans-serif;
                background-color: #f7f7f7;
                color: #333;
                padding: 20px;
            }
            .container {
                background-color: #fff;
                padding: 20px;
                border-radius: 8px;
                box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1);
                text-align: center;
            }
            .title {
                font-size: 24px;
                font-weight: bold;
                color: #4CAF50;
            }
            .message {
                font-size: 18px;
                color: #555;
                margin-top: 10px;
            }
        </style>
    </head>
    <body>
        <div class="container">
            <div class="title">Email Verified Successfully!</div>
            <div class="message">
                Your email has been successfully verified. You can now Login
            </div>
        </div>
    </body>
</html>`
