package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/Govind-619/DomainDesk/models"
)

// MinChargeableAmount is the smallest order Razorpay accepts, in paise
const MinChargeableAmount int64 = 100

const (
	receiptIDChars    = 12
	receiptStampChars = 8
)

// RenewalAmount is the price of renewing project for the given number of years
func RenewalAmount(project *models.Project, years int) int64 {
	return project.EffectiveRenewalPrice() * int64(years)
}

// BuildReceipt returns a short receipt such as proj_3f2a9c1b7d4e_17512178.
// Razorpay caps receipts at 40 characters.
func BuildReceipt(projectID string, now time.Time) string {
	id := strings.ReplaceAll(projectID, "-", "")
	if len(id) > receiptIDChars {
		id = id[:receiptIDChars]
	}
	stamp := strconv.FormatInt(now.UnixMilli(), 10)
	if len(stamp) > receiptStampChars {
		stamp = stamp[len(stamp)-receiptStampChars:]
	}
	return "proj_" + id + "_" + stamp
}

// ExtendDomainEnd adds whole calendar years to the current expiry, or to now
// when the domain has none. Feb 29 rolls over to Mar 1 on non-leap targets.
func ExtendDomainEnd(current *time.Time, now time.Time, years int) time.Time {
	base := now
	if current != nil {
		base = *current
	}
	return base.AddDate(years, 0, 0)
}
