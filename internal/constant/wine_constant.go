package constant

const (
	// CorpusName identifies the review corpus in ingest bookkeeping,
	// lock keys and run history.
	CorpusName = "kaggle_wine_reviews"

	// IngestLockKey serializes ingestion so only one run per corpus is
	// active at a time, across processes when Redis backs the lock.
	IngestLockKey = "ingest:" + CorpusName

	// CountryStatsCacheKey caches the aggregated per-country statistics.
	CountryStatsCacheKey = "stats:country"

	// DefaultMinWinesPerCountry drops countries with too few reviews from
	// the stats listing.
	DefaultMinWinesPerCountry = 50

	// DefaultTopVarieties is how many varieties are reported per country.
	DefaultTopVarieties = 5
)
