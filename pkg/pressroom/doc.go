// Package pressroom defines the storage contract for the content
// marketplace: posts, downloadable assets, categories, comments, users,
// reviews and SEO metadata, served by interchangeable backends.
//
// Two adapters implement the Store interface: repo/postgres (durable)
// and repo/memory (volatile). The Selector owns whichever adapter is
// currently active and swaps between them based on connectivity, so
// handlers always have a working store even when the database is down.
package pressroom
