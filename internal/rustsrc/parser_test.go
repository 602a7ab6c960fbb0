package rustsrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFreeFunction(t *testing.T) {
	src := `use solana_program::account_info::AccountInfo;

pub fn process_instruction(account: &AccountInfo, amount: u64) -> ProgramResult {
    let balance = account.lamports();
    Ok(())
}
`
	f, err := Parse("lib.rs", src)
	require.NoError(t, err)
	require.Len(t, f.Functions, 1)

	fn := f.Functions[0]
	assert.Equal(t, "process_instruction", fn.Name)
	assert.Equal(t, "pub", fn.Visibility)
	assert.Equal(t, 3, fn.StartLine)
	assert.Equal(t, 6, fn.EndLine)
	assert.Empty(t, fn.ImplType)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "account", fn.Params[0].Name)
	assert.Equal(t, "&AccountInfo", fn.Params[0].Type)
	assert.Contains(t, fn.Body, "lamports")
}

func TestParseImplMethodAndAttrs(t *testing.T) {
	src := `impl Vault {
    #[ink(message)]
    pub fn withdraw(&mut self, amount: Balance) {
        self.balance -= amount;
    }
}
`
	f, err := Parse("lib.rs", src)
	require.NoError(t, err)
	require.Len(t, f.Functions, 1)

	fn := f.Functions[0]
	assert.Equal(t, "withdraw", fn.Name)
	assert.Equal(t, "Vault", fn.ImplType)
	assert.True(t, fn.HasAttr("ink(message)"))
}

func TestBracesInStringsAndCommentsIgnored(t *testing.T) {
	src := `fn tricky() {
    let s = "not a brace: { nor this }";
    // a comment with { braces }
    /* and a block one } */
    let c = '{';
    done();
}

fn after() {
    ok();
}
`
	f, err := Parse("lib.rs", src)
	require.NoError(t, err)
	require.Len(t, f.Functions, 2)
	assert.Equal(t, "tricky", f.Functions[0].Name)
	assert.Equal(t, 7, f.Functions[0].EndLine)
	assert.Equal(t, "after", f.Functions[1].Name)
}

func TestTraitDeclarationsSkipped(t *testing.T) {
	src := `trait Handler {
    fn handle(&self, msg: Msg) -> Result<Response, Error>;
}

fn real() {
    noop();
}
`
	f, err := Parse("lib.rs", src)
	require.NoError(t, err)
	require.Len(t, f.Functions, 1)
	assert.Equal(t, "real", f.Functions[0].Name)
}

func TestUnbalancedBracesIsError(t *testing.T) {
	src := "fn broken() {\n    if x {\n"
	_, err := Parse("lib.rs", src)
	assert.Error(t, err)
}

func TestGenericParamsSplit(t *testing.T) {
	src := `fn generic(map: HashMap<String, Vec<u8>>, n: u32) {
    noop();
}
`
	f, err := Parse("lib.rs", src)
	require.NoError(t, err)
	require.Len(t, f.Functions, 1)
	require.Len(t, f.Functions[0].Params, 2)
	assert.Equal(t, "HashMap<String, Vec<u8>>", f.Functions[0].Params[0].Type)
}

func TestTestAttrDetection(t *testing.T) {
	src := `#[test]
fn exercises_vault() {
    assert!(true);
}
`
	f, err := Parse("lib.rs", src)
	require.NoError(t, err)
	require.Len(t, f.Functions, 1)
	assert.True(t, f.Functions[0].IsTest())
}

func TestIsTestNameMatching(t *testing.T) {
	src := `fn get_latest_price() { noop(); }

fn contest_bid() { noop(); }

fn attest_balance() { noop(); }

fn test_withdraw() { noop(); }

fn withdraw_test() { noop(); }
`
	f, err := Parse("lib.rs", src)
	require.NoError(t, err)
	require.Len(t, f.Functions, 5)

	byName := map[string]bool{}
	for _, fn := range f.Functions {
		byName[fn.Name] = fn.IsTest()
	}
	assert.False(t, byName["get_latest_price"])
	assert.False(t, byName["contest_bid"])
	assert.False(t, byName["attest_balance"])
	assert.True(t, byName["test_withdraw"])
	assert.True(t, byName["withdraw_test"])
}

func TestCfgTestAttrDetection(t *testing.T) {
	src := `#[cfg(test)]
fn exercises_pool() { assert!(true); }
`
	f, err := Parse("lib.rs", src)
	require.NoError(t, err)
	require.Len(t, f.Functions, 1)
	assert.True(t, f.Functions[0].IsTest())
}
