// Package session provides the acting-user collaborator for audit
// attribution.
//
// The adjustment pass stamps every audit row with the operator that applied
// it. HTTP requests carry the operator id in a header which middleware puts
// on the request context; CLI runs fall back to the configured id. Both
// paths may legitimately resolve to no user, in which case audit rows are
// written without attribution.
package session
