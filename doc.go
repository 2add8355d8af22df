// Package tradebook is the accounting engine of a personal trading journal.
//
// From a chronological, possibly incomplete, stream of buy and sell events
// (entered manually or imported from a broker) it derives:
//   - the FIFO ledger of surviving lots, with fallbacks for imports that only
//     know an aggregated holding,
//   - the missing stop-losses of imported fills, inferred from broker orders,
//   - the original and current risk of every entry and lot,
//   - the position aggregates: average entry, realized P&L and return, one per
//     lifecycle epoch,
//   - the account equity curve from cash flows and closed positions.
//
// Everything is a pure function of a Snapshot: nothing is patched
// incrementally, an edit to any event means a full recomputation (Analyze),
// which a Cache can memoize on the snapshot fingerprint.
//
// The journal itself is a plain JSONL file (see Book), written by the `tbk`
// command line tool.
package tradebook
