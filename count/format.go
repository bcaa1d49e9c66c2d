// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package count

import (
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/my-vote/models"
)

// Votes formats a vote or ballot count with thousands grouping (12,345).
func Votes(n int) string {
	return humanize.Comma(int64(n))
}

// Percent formats a 0..1 fraction as a percentage with two decimals.
func Percent(fraction float64) string {
	return PercentValue(fraction * 100)
}

// PercentValue formats a value already expressed in percent.
func PercentValue(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64) + "%"
}

// Quota is the Droop quota for the given formal papers and vacancies.
// Narratives display the quota from the result data, not this value.
func Quota(papers, vacancies int) int {
	return papers/(vacancies+1) + 1
}

// QuotaMatches reports whether a Senate result's quota agrees with Quota.
func QuotaMatches(r models.SenateResult) bool {
	return Quota(r.Papers, r.Vacancies) == r.Quota
}
