/*
Package vault provides the basic types shared by the quorum vault library.

The root package declares the identity types (Condition, Address), the
second-precision time types (UnixTime, UnixDuration), the key-value store
contracts every component is written against, and the Persistent marshaling
contract for stored models. The actual state machine lives in x/wallet, the
balance ledger in x/cash.
*/
package vault
