package utils

import "time"

// BookingCachePrefix is the prefix used for Redis booking cache keys.
const BookingCachePrefix = "booking:"

// BookingCacheTTL is the time-to-live for cached booking reads.
const BookingCacheTTL = 5 * time.Minute
