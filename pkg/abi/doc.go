// Package abi models the interface description of a contract.
//
// Descriptions exist in two forms. The expanded form (ContractSpec and the
// specs nested in it) carries literal names and type descriptors and is only
// produced through builders, which reject incomplete entities. The compact
// form (CompactContractSpec and friends) has the same shape, with every name
// and type replaced by a symbol from a registry.Registry. NewProject performs
// the compaction and bundles the result with the registry tables.
//
// Builders panic with a *MisuseError when a field is set twice or the
// builder is reused after Done. Done reports missing required fields with an
// *IncompleteSpecError.
package abi
