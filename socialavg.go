// Package socialavg turns a social-media engagement export into per-group
// average Likes tables.
//
// Usage:
//
//	import "github.com/spektr-org/socialavg/aggregator"
//
//	table, err := aggregator.Load("socialMedia.csv")
//	if err != nil {
//	    return err
//	}
//	byType, err := aggregator.AggregateByPlatformPostType(table)
//	if err != nil {
//	    return err
//	}
//	err = aggregator.Write(byType, "socialMediaAvg.csv")
//
// The aggregator reads rows through the engine package (record views and
// grouped aggregation) and the schema package (required columns).
// The engine never touches the filesystem — all computation is in memory.
package socialavg
