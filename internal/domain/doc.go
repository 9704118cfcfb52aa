// Package domain models ensemble forecast verification data for named
// UK storms and implements the Bias-Coherence Index (BCI) scoring of
// ensemble reliability.
//
// # Data Source
//
// Forecasts originate from the THORPEX Interactive Grand Global
// Ensemble (TIGGE) archive: perturbed-member 2-metre temperature
// forecasts from the ECMWF and CMC (cwao) ensembles, retrieved per
// storm by cmd/fetch. An upstream tabulation step decodes the GRIB
// grids, extracts the point nearest the verification site, pairs each
// forecast valid time with its verifying observation, and emits two
// flat CSVs: a matched dataset (one row per storm and valid time, with
// observation, ensemble mean, ensemble spread, and mean absolute error)
// and an ensemble dataset (one row per individual member temperature).
// This package starts where tabulation ends.
//
// # Scoring Conventions
//
// One scoring instance is a (storm, valid time) pair. Instances with
// fewer than [MinMembers] members are skipped, not scored.
//
// Bias coherence (phi) asks whether the ensemble errs like a chorus or
// like a crowd:
//
//	bias_i      = member_i - observation
//	agreement   = max(#positive, #negative) / #members
//	              (members exactly on the observation count toward neither side)
//	consistency = 1 / (1 + cv)  where cv = popstd(bias) / |mean(bias)|,
//	              or 0.8 when |mean(bias)| <= 0.01 (cv undefined near zero)
//	phi         = clip(0.5*agreement + 0.5*consistency, 0.3, 1.0)
//
// Spread reliability (rho) asks whether the ensemble's spread admitted
// its realized error:
//
//	rho = clip(min(spread/error, 1.0), 0.3, 1.0)  when error > 0.1
//	    = 1.0                                     otherwise
//
// The composite index is the geometric mean:
//
//	BCI = sqrt(phi * rho)
//
// Both components are clipped to [0.3, 1.0], so BCI is too. The floor
// keeps one degenerate component from zeroing the composite; the
// geometric mean still demands that both components be good for a high
// score. Higher BCI reads as "this ensemble's error statistics are more
// trustworthy at face value".
//
// # Degenerate Inputs
//
// Scoring never fails on degenerate numbers, only on structure. An
// unbiased ensemble (|mean bias| <= 0.01) takes the neutral consistency
// 0.8; a near-perfect forecast (error <= 0.1) takes full spread credit;
// a zero-spread ensemble with real error floors rho at 0.3. The only
// scoring error is [ErrNoMembers] for an empty member set.
//
// # Instance Keys
//
// Records join to member sets by exact (storm, valid time) equality.
// Keys normalize the valid time to UTC RFC 3339 text so that map
// lookups are unaffected by time zone representation or monotonic
// clock readings. There is no tolerance window: tabulation emits both
// files from the same grids, so times either match exactly or describe
// different instances.
package domain
