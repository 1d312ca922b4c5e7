/*
Package cash defines a simple ledger. Each account, keyed by an
address, holds a set of coins. The Controller moves funds between
accounts and is the only piece other packages should use to touch
balances.
*/
package cash
