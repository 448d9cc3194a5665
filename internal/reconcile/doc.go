// Package reconcile holds the reconciliation workflow: the loop that lists
// authorship, lets an Operator pick a value to change, applies it through the
// history client, verifies the effect and finally pushes.
//
// Decisions are taken by an Operator. ConsoleOperator asks a person,
// PlanOperator answers from a YAML plan file, and tests script their own.
package reconcile
