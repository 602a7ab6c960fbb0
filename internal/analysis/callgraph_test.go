package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehvCurtis/rustdefend/internal/model"
	"github.com/dehvCurtis/rustdefend/internal/rustsrc"
)

func buildGraph(t *testing.T, source string) CallGraph {
	t.Helper()
	f, err := rustsrc.Parse("test.rs", source)
	require.NoError(t, err)
	return BuildCallGraph(f)
}

func TestCallerCheckPropagates(t *testing.T) {
	graph := buildGraph(t, `
fn process_instruction(account: &AccountInfo) {
    if !account.is_signer {
        return;
    }
    transfer(account);
}

fn transfer(account: &AccountInfo) {
    let data = account.try_borrow_mut_data();
}
`)
	assert.True(t, CallerHasCheck(graph, "transfer", model.CheckSigner))
	assert.True(t, EveryCallerHasCheck(graph, "transfer", model.CheckSigner))
}

func TestZeroCallersNeverSuppressed(t *testing.T) {
	graph := buildGraph(t, `
fn transfer(account: &AccountInfo) {
    let data = account.try_borrow_mut_data();
}
`)
	assert.False(t, CallerHasCheck(graph, "transfer", model.CheckSigner))
	assert.False(t, EveryCallerHasCheck(graph, "transfer", model.CheckSigner))
}

func TestCycleTerminates(t *testing.T) {
	graph := buildGraph(t, `
fn a() { b(); }
fn b() { a(); }
`)
	assert.False(t, CallerHasCheck(graph, "a", model.CheckSigner))
	assert.False(t, EveryCallerHasCheck(graph, "a", model.CheckSigner))
	assert.False(t, EveryCallerHasCheck(graph, "b", model.CheckSigner))
}

func TestTransitivePropagation(t *testing.T) {
	graph := buildGraph(t, `
fn entry(account: &AccountInfo) {
    if !account.is_signer { return; }
    middle(account);
}

fn middle(account: &AccountInfo) {
    leaf(account);
}

fn leaf(account: &AccountInfo) {
    let data = account.try_borrow_mut_data();
}
`)
	assert.True(t, EveryCallerHasCheck(graph, "middle", model.CheckSigner))
	assert.True(t, EveryCallerHasCheck(graph, "leaf", model.CheckSigner))
}

func TestOneUncheckedCallerBlocksSuppression(t *testing.T) {
	graph := buildGraph(t, `
fn guarded(account: &AccountInfo) {
    assert!(account.is_signer);
    helper(account);
}

fn unguarded(account: &AccountInfo) {
    helper(account);
}

fn helper(account: &AccountInfo) {
    let data = account.try_borrow_mut_data();
}
`)
	// Some caller has the check, but not every caller does.
	assert.True(t, CallerHasCheck(graph, "helper", model.CheckSigner))
	assert.False(t, EveryCallerHasCheck(graph, "helper", model.CheckSigner))
}

func TestOwnerCheckPropagation(t *testing.T) {
	graph := buildGraph(t, `
fn process(account: &AccountInfo, program_id: &Pubkey) {
    if account.owner != program_id {
        return;
    }
    helper(account);
}

fn helper(account: &AccountInfo) {
    let data = account.try_borrow_data();
}
`)
	assert.True(t, EveryCallerHasCheck(graph, "helper", model.CheckOwner))
}

func TestTypeMapAnnotations(t *testing.T) {
	f, err := rustsrc.Parse("test.rs", `
use cosmwasm_std::Uint128;

fn process(amount: Uint128) {
    let total: Uint128 = amount;
    let raw: u64 = 0;
}
`)
	require.NoError(t, err)
	tm := BuildTypeMap(f)
	assert.True(t, tm.IsSafeArithmeticType("amount"))
	assert.True(t, tm.IsSafeArithmeticType("total"))
	assert.False(t, tm.IsSafeArithmeticType("raw"))
	assert.True(t, tm.HasSafeTypeImports())
}
