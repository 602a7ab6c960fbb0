package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehvCurtis/rustdefend/internal/model"
)

func TestUncheckedSubtractionFlagged(t *testing.T) {
	ctx := contextFor(t, model.ChainSolana, `
pub fn withdraw(balance: u64, amount: u64) -> u64 {
    let remaining = balance - amount;
    remaining
}
`)
	findings := (&solIntegerOverflow{}).Detect(ctx)
	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, "SOL-003", f.DetectorID)
	assert.Equal(t, 3, f.Line)
	assert.Contains(t, f.Message, "withdraw")
	assert.Contains(t, f.Snippet, "balance - amount")
}

func TestCheckedSubtractionNotFlagged(t *testing.T) {
	ctx := contextFor(t, model.ChainSolana, `
pub fn withdraw(balance: u64, amount: u64) -> Option<u64> {
    let remaining = balance.checked_sub(amount)?;
    Some(remaining)
}
`)
	assert.Empty(t, (&solIntegerOverflow{}).Detect(ctx))
}

func TestGuardedSubtractionNotFlagged(t *testing.T) {
	ctx := contextFor(t, model.ChainSolana, `
pub fn withdraw(balance: u64, amount: u64) -> u64 {
    if balance < amount {
        return 0;
    }
    balance - amount
}
`)
	assert.Empty(t, (&solIntegerOverflow{}).Detect(ctx))
}

func TestDivisionDowngradedToLowConfidence(t *testing.T) {
	ctx := contextFor(t, model.ChainSolana, `
pub fn share(total: u64, parts: u64) -> u64 {
    total / parts
}
`)
	findings := (&solIntegerOverflow{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, model.ConfidenceLow, findings[0].Confidence)
}

func TestLengthArithmeticNotFlagged(t *testing.T) {
	ctx := contextFor(t, model.ChainSolana, `
pub fn tail(data: &[u8], n: usize) -> usize {
    data.len() - n
}
`)
	assert.Empty(t, (&solIntegerOverflow{}).Detect(ctx))
}

func TestSignerCheckMissing(t *testing.T) {
	ctx := contextFor(t, model.ChainSolana, `
pub fn update_config(authority: &AccountInfo, new_fee: u64) -> ProgramResult {
    let mut data = authority.try_borrow_mut_data()?;
    data[0] = new_fee as u8;
    Ok(())
}
`)
	findings := (&solMissingSigner{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "SOL-001", findings[0].DetectorID)
	assert.Contains(t, findings[0].Message, "'authority'")
}

func TestSignerCheckPresent(t *testing.T) {
	ctx := contextFor(t, model.ChainSolana, `
pub fn update_config(authority: &AccountInfo, new_fee: u64) -> ProgramResult {
    if !authority.is_signer {
        return Err(ProgramError::MissingRequiredSignature);
    }
    let mut data = authority.try_borrow_mut_data()?;
    data[0] = new_fee as u8;
    Ok(())
}
`)
	assert.Empty(t, (&solMissingSigner{}).Detect(ctx))
}

func TestSignerCheckSkipsAnchorContext(t *testing.T) {
	ctx := contextFor(t, model.ChainSolana, `
pub fn update_config(ctx: Context<UpdateConfig>, new_fee: u64) -> Result<()> {
    ctx.accounts.config.fee = new_fee;
    Ok(())
}
`)
	assert.Empty(t, (&solMissingSigner{}).Detect(ctx))
}

func TestOwnerCheckMissing(t *testing.T) {
	ctx := contextFor(t, model.ChainSolana, `
pub fn read_state(state_input: &AccountInfo) -> Result<State, ProgramError> {
    let state = State::try_from_slice(&state_input.try_borrow_data()?)?;
    Ok(state)
}
`)
	findings := (&solMissingOwner{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "SOL-002", findings[0].DetectorID)
}

func TestOwnerCheckPresent(t *testing.T) {
	ctx := contextFor(t, model.ChainSolana, `
pub fn read_state(state_input: &AccountInfo, program_id: &Pubkey) -> Result<State, ProgramError> {
    if state_input.owner != program_id {
        return Err(ProgramError::IncorrectProgramId);
    }
    let state = State::try_from_slice(&state_input.try_borrow_data()?)?;
    Ok(state)
}
`)
	assert.Empty(t, (&solMissingOwner{}).Detect(ctx))
}

func TestCheckedArithmeticUnwrap(t *testing.T) {
	ctx := contextFor(t, model.ChainSolana, `
pub fn credit(balance: u64, amount: u64) -> u64 {
    balance.checked_add(amount).unwrap()
}
`)
	findings := (&solCheckedArithmeticUnwrap{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "SOL-010", findings[0].DetectorID)
	assert.Equal(t, 3, findings[0].Line)
}

func TestCosmWasmSafeTypeExcluded(t *testing.T) {
	ctx := contextFor(t, model.ChainCosmWasm, `
use cosmwasm_std::Uint128;

pub fn credit(balance: Uint128, amount: Uint128) -> Uint128 {
    balance + amount
}
`)
	assert.Empty(t, (&cwIntegerOverflow{}).Detect(ctx))
}

func TestCosmWasmPrimitiveFlagged(t *testing.T) {
	ctx := contextFor(t, model.ChainCosmWasm, `
pub fn credit(balance: u64, amount: u64) -> u64 {
    balance + amount
}
`)
	findings := (&cwIntegerOverflow{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "CW-001", findings[0].DetectorID)
}

func TestExecuteWithoutSenderCheck(t *testing.T) {
	ctx := contextFor(t, model.ChainCosmWasm, `
pub fn execute_set_fee(deps: DepsMut, info: MessageInfo, fee: u64) -> Result<Response, ContractError> {
    CONFIG.update(deps.storage, |mut c| -> Result<_, ContractError> {
        c.fee = fee;
        Ok(c)
    })?;
    Ok(Response::default())
}
`)
	findings := (&cwMissingSenderCheck{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "CW-003", findings[0].DetectorID)
}

func TestExecuteWithSenderCheckClean(t *testing.T) {
	ctx := contextFor(t, model.ChainCosmWasm, `
pub fn execute_set_fee(deps: DepsMut, info: MessageInfo, fee: u64) -> Result<Response, ContractError> {
    let config = CONFIG.load(deps.storage)?;
    if info.sender != config.admin {
        return Err(ContractError::Unauthorized {});
    }
    CONFIG.save(deps.storage, &config)?;
    Ok(Response::default())
}
`)
	assert.Empty(t, (&cwMissingSenderCheck{}).Detect(ctx))
}

func TestAddressStoredWithoutValidation(t *testing.T) {
	ctx := contextFor(t, model.ChainCosmWasm, `
pub fn execute_set_admin(deps: DepsMut, info: MessageInfo, new_admin: String) -> Result<Response, ContractError> {
    let config = CONFIG.load(deps.storage)?;
    if info.sender != config.admin {
        return Err(ContractError::Unauthorized {});
    }
    ADMIN.save(deps.storage, &Addr::unchecked(new_admin))?;
    Ok(Response::default())
}
`)
	findings := (&cwMissingAddressValidation{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "CW-004", findings[0].DetectorID)
}

func TestAddressValidatedClean(t *testing.T) {
	ctx := contextFor(t, model.ChainCosmWasm, `
pub fn execute_set_admin(deps: DepsMut, info: MessageInfo, new_admin: String) -> Result<Response, ContractError> {
    let addr = deps.api.addr_validate(&new_admin)?;
    ADMIN.save(deps.storage, &addr)?;
    Ok(Response::default())
}
`)
	assert.Empty(t, (&cwMissingAddressValidation{}).Detect(ctx))
}

func TestUnguardedMigrate(t *testing.T) {
	ctx := contextFor(t, model.ChainCosmWasm, `
pub fn migrate(deps: DepsMut, env: Env, msg: MigrateMsg) -> Result<Response, ContractError> {
    STATE.save(deps.storage, &State::default())?;
    Ok(Response::default())
}
`)
	findings := (&cwUnguardedMigrate{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "CW-010", findings[0].DetectorID)
}

func TestMigrateWithVersionCheckClean(t *testing.T) {
	ctx := contextFor(t, model.ChainCosmWasm, `
pub fn migrate(deps: DepsMut, env: Env, msg: MigrateMsg) -> Result<Response, ContractError> {
    let version = get_contract_version(deps.storage)?;
    set_contract_version(deps.storage, CONTRACT_NAME, CONTRACT_VERSION)?;
    Ok(Response::default())
}
`)
	assert.Empty(t, (&cwUnguardedMigrate{}).Detect(ctx))
}

func TestSignerAuthorizationFlagged(t *testing.T) {
	ctx := contextFor(t, model.ChainNear, `
pub fn set_owner(&mut self, new_owner: AccountId) {
    assert_eq!(env::signer_account_id(), self.owner, "not the owner");
    self.owner = new_owner;
}
`)
	findings := (&nearSignerVsPredecessor{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "NEAR-002", findings[0].DetectorID)
	assert.Contains(t, findings[0].Recommendation, "predecessor_account_id")
}

func TestPredecessorAuthorizationClean(t *testing.T) {
	ctx := contextFor(t, model.ChainNear, `
pub fn set_owner(&mut self, new_owner: AccountId) {
    assert_eq!(env::predecessor_account_id(), self.owner, "not the owner");
    self.owner = new_owner;
}
`)
	assert.Empty(t, (&nearSignerVsPredecessor{}).Detect(ctx))
}

func TestPublicCallbackFlagged(t *testing.T) {
	ctx := contextFor(t, model.ChainNear, `
pub fn on_transfer_complete(&mut self, amount: u128) {
    self.pending = self.pending.saturating_sub(amount);
}
`)
	findings := (&nearMissingPrivateCallback{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "NEAR-003", findings[0].DetectorID)
}

func TestPrivateCallbackClean(t *testing.T) {
	ctx := contextFor(t, model.ChainNear, `
#[private]
pub fn on_transfer_complete(&mut self, amount: u128) {
    self.pending = self.pending.saturating_sub(amount);
}
`)
	assert.Empty(t, (&nearMissingPrivateCallback{}).Detect(ctx))
}

func TestPayableWithoutDepositCheck(t *testing.T) {
	ctx := contextFor(t, model.ChainNear, `
#[payable]
pub fn buy(&mut self, item: String) {
    self.sold.insert(&item);
}
`)
	findings := (&nearMissingDepositCheck{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "NEAR-005", findings[0].DetectorID)
}

func TestPayableWithDepositCheckClean(t *testing.T) {
	ctx := contextFor(t, model.ChainNear, `
#[payable]
pub fn buy(&mut self, item: String) {
    let deposit = env::attached_deposit();
    assert!(deposit >= self.price, "insufficient deposit");
    self.sold.insert(&item);
}
`)
	assert.Empty(t, (&nearMissingDepositCheck{}).Detect(ctx))
}

func TestInkMessageWithoutCallerCheck(t *testing.T) {
	ctx := contextFor(t, model.ChainInk, `
#[ink(message)]
pub fn set_fee(&mut self, fee: u128) {
    self.fee = fee;
}
`)
	findings := (&inkMissingCallerCheck{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "INK-002", findings[0].DetectorID)
}

func TestInkMessageWithCallerCheckClean(t *testing.T) {
	ctx := contextFor(t, model.ChainInk, `
#[ink(message)]
pub fn set_fee(&mut self, fee: u128) {
    assert_eq!(self.env().caller(), self.owner);
    self.fee = fee;
}
`)
	assert.Empty(t, (&inkMissingCallerCheck{}).Detect(ctx))
}

func TestInkPanicInMessage(t *testing.T) {
	ctx := contextFor(t, model.ChainInk, `
#[ink(message)]
pub fn balance_of(&self, who: AccountId) -> u128 {
    self.balances.get(&who).unwrap()
}
`)
	findings := (&inkPanicUsage{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "INK-007", findings[0].DetectorID)
}

func TestInkUnwrapOrDefaultClean(t *testing.T) {
	ctx := contextFor(t, model.ChainInk, `
#[ink(message)]
pub fn balance_of(&self, who: AccountId) -> u128 {
    self.balances.get(&who).unwrap_or_default()
}
`)
	assert.Empty(t, (&inkPanicUsage{}).Detect(ctx))
}

func TestUnguardedSetCodeHash(t *testing.T) {
	ctx := contextFor(t, model.ChainInk, `
#[ink(message)]
pub fn upgrade(&mut self, code_hash: Hash) {
    self.env().set_code_hash(&code_hash).unwrap_or_else(|err| {
        panic!("upgrade failed: {:?}", err)
    });
}
`)
	findings := (&inkUnguardedSetCodeHash{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "INK-009", findings[0].DetectorID)
}

func TestGuardedSetCodeHashClean(t *testing.T) {
	ctx := contextFor(t, model.ChainInk, `
#[ink(message)]
pub fn upgrade(&mut self, code_hash: Hash) {
    assert_eq!(self.env().caller(), self.owner);
    self.env().set_code_hash(&code_hash).expect("upgrade failed");
}
`)
	assert.Empty(t, (&inkUnguardedSetCodeHash{}).Detect(ctx))
}

func TestTestFunctionsSkipped(t *testing.T) {
	ctx := contextFor(t, model.ChainSolana, `
#[test]
fn test_withdraw() {
    let remaining = balance - amount;
}
`)
	assert.Empty(t, (&solIntegerOverflow{}).Detect(ctx))
}

func TestProductionNameContainingTestNotSkipped(t *testing.T) {
	ctx := contextFor(t, model.ChainSolana, `
pub fn get_latest_price(balance: u64, amount: u64) -> u64 {
    balance - amount
}
`)
	findings := (&solIntegerOverflow{}).Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "SOL-003", findings[0].DetectorID)
	assert.Contains(t, findings[0].Message, "get_latest_price")
}
