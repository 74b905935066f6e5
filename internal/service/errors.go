package service

import "errors"

// Sentinel errors for rule violations handlers map onto HTTP statuses.
var (
	// ErrRoleInUse blocks role deletion while memberships reference it.
	ErrRoleInUse = errors.New("role is assigned to active memberships")

	// ErrSystemRole blocks deletion or flag changes on seeded system roles.
	ErrSystemRole = errors.New("system roles cannot be modified or deleted")

	// ErrUnbalancedEntry rejects journal entries whose debits and credits differ.
	ErrUnbalancedEntry = errors.New("journal entry debits and credits do not balance")

	// ErrPostingToGroup rejects postings against group accounts.
	ErrPostingToGroup = errors.New("group accounts cannot receive postings")

	// ErrAccountInUse blocks account deletion while postings or children exist.
	ErrAccountInUse = errors.New("account has postings or child accounts")
)
