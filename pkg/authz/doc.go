// Package authz provides attribute-based authorization for the dataset
// catalog and its sub-resources (attachments, origdatablocks, datablocks,
// logbooks).
//
// This package is the single source of truth for all authorization decisions.
// Instance-level checks and list-filter narrowing are derived from the same
// per-operation tier table, so a dataset is returned by a narrowed list query
// if and only if the single-item check for the same principal would succeed.
//
// # Visibility Tiers
//
// Every operation family is evaluated against an ordered list of tiers:
//   - any: no restriction on the target instance
//   - access: owner group or access groups intersect the principal's groups,
//     or the instance is shared with the principal's email
//   - owner: owner group intersects the principal's groups
//   - public: the instance is published
//
// The grant set of a principal is a pure function of its group memberships
// and the configured group lists; it is recomputed per request and never
// cached across principals.
//
// # Usage
//
//	authorizer, err := authz.NewAuthorizer(authz.Config{
//		Logger:  myLogger,
//		Fetcher: datasetStore,
//	})
//
//	instance, err := authorizer.Authorize(ctx, principal,
//		authz.OpDatasetRead, authz.TargetPid("20.500.12269/abc"))
//	if err != nil {
//		return err // authz.ErrCodeForbidden, authz.ErrCodeNotFound, ...
//	}
//
//	filter, err := authorizer.NarrowFilter(principal, authz.OpDatasetRead, callerFilter)
//
// # Thread Safety
//
// Authorizer is safe for concurrent use. The group configuration is immutable
// after construction and decisions share no state across requests.
//
// # Decision Logging
//
// Every authorization decision is logged with structured fields including
// principal, operation, granting action and tier, target pid, decision, and
// duration. Configure logging via Config.Logger and audit sinks via
// Config.Audit.
package authz
