/*
Package wallet implements the transaction lifecycle of a quorum
controlled custodial vault.

A fixed set of owners shares control over funds held at a source
address. Any owner may submit a transfer proposal, which counts as the
submitter's confirmation. Further owners confirm until the threshold
is reached, at which point the funds move exactly once and the
transaction becomes EXECUTED. Proposals not executed within the expiry
window become EXPIRED on their next touch. Both final states are
terminal.
*/
package wallet
