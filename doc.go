// Package auth implements the account lifecycle for the lending
// platform: registration, email verification, credential login with
// JWT issuance, and the two-step password reset flow.
//
// State-changing operations are modeled as messages handled by
// dedicated handlers, persistence goes through a RepositoryManager
// backed by bun, and outbound email is sent through a Notifier chain
// so a broken SMTP relay never rolls back a committed mutation.
package auth
