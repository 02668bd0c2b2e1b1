package service

import "errors"

var (
	// ErrNotFound signals an unknown link, user, or snippet.
	ErrNotFound = errors.New("not found")
	// ErrNotOwner signals a mutation attempt by someone other than the owner.
	ErrNotOwner = errors.New("not the owner of this link")

	// ErrInvalidURL covers syntactically broken or non-http(s) URLs.
	ErrInvalidURL = errors.New("a valid http or https URL is required")
	// ErrForbiddenHost covers loopback, private-range and otherwise internal hosts.
	ErrForbiddenHost = errors.New("internal or local URLs are not allowed")
	// ErrInvalidAlias signals an alias outside ^[A-Za-z0-9_-]{3,64}$.
	ErrInvalidAlias = errors.New("invalid alias format")
	// ErrAliasTaken signals an alias colliding with an existing code or alias.
	ErrAliasTaken = errors.New("alias is already in use")
	// ErrGenerationExhausted signals that the code generator ran out of retries.
	ErrGenerationExhausted = errors.New("short code generation exhausted retries")

	// ErrLinkDisabled gates redirects on manually or lazily disabled links.
	ErrLinkDisabled = errors.New("link is disabled")
	// ErrLinkExpired gates the first redirect after the expiry time.
	ErrLinkExpired = errors.New("link has expired")
	// ErrPasswordRequired gates redirects on password-protected links.
	ErrPasswordRequired = errors.New("link is password protected")

	// ErrEmailTaken signals a signup with an already registered email.
	ErrEmailTaken = errors.New("user already exists")
	// ErrInvalidCredentials covers unknown email or wrong password on login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWeakPassword signals a signup password below the minimum length.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
)
