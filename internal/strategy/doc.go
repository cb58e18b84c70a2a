// Package strategy holds the pure comparison rules used by the match engine.
//
// Each strategy compares one subject against one reference asset and returns
// either a typed asset.Result or no opinion (ok == false). Strategies never
// return errors: missing inputs such as an absent timestamp or hash simply
// mean the rule does not apply. Thresholds and tolerances are carried by
// Policy so callers can tune them from configuration.
package strategy
