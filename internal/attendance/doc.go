// Package attendance implements the second half of the analysis pipeline:
// regulation-aware theory/lab subject merging and the OD/ML attendance
// adjustment engine.
//
// # Merging
//
// Raw subject rows for a student are partitioned by base code. How the base
// code is extracted depends on the regulation policy:
//
//   - PolicyLegacy: a trailing theory marker (T) or lab marker (L) is
//     stripped; an embedded regulation suffix (-R21/-R18) is removed before
//     marker detection and re-appended to the base.
//   - PolicyCurrent: only a trailing lab marker strips; any other code is its
//     own base verbatim.
//
// Each partition aggregates into one SubjectAttendance; partitions with more
// than one member keep the ordered source codes and a per-component
// breakdown.
//
// # Adjustment
//
// The engine computes the raw percentage per subject, boosts the attended
// count by approved absences (OD + ML, capped at conducted) when the raw
// percentage falls below the configured threshold, assigns one of four fixed
// risk categories, and aggregates per-student and cohort-wide summaries.
//
// All components are value types holding only immutable configuration; every
// analysis run constructs its entities fresh, so concurrent runs never share
// mutable state.
package attendance
