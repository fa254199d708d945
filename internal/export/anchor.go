package export

import (
	"fmt"
	"strings"

	"github.com/roach88/kazt/internal/ir"
)

// Anchor renders an Anchor program skeleton for blocks.
//
// The program initializes a rules account, then emits one setter per
// ordering, batching and filter block in input order. Matching and priority
// blocks have no on-chain setter and emit nothing. The text is a sketch for
// a developer to finish; it is not checked to compile.
func Anchor(blocks []ir.RuleBlock) string {
	var b strings.Builder

	writeLines(&b,
		"use anchor_lang::prelude::*;",
		"",
		"#[program]",
		"pub mod ace_rules {",
		"    use super::*;",
		"",
		"    pub fn initialize_rules(ctx: Context<InitializeRules>, rules_data: Vec<u8>) -> Result<()> {",
		"        let rules_account = &mut ctx.accounts.rules_account;",
		"        rules_account.authority = ctx.accounts.authority.key();",
		"        rules_account.rules_data = rules_data;",
		fmt.Sprintf("        rules_account.block_count = %d as u32;", len(blocks)),
		"        rules_account.created_at = Clock::get()?.unix_timestamp;",
		"        Ok(())",
		"    }",
	)

	for _, block := range blocks {
		writeBlock(&b, block)
	}

	writeLines(&b,
		"}",
		"",
		"#[derive(AnchorSerialize, AnchorDeserialize, Clone, PartialEq, Eq)]",
		"pub enum OrderingMethod {",
		"    Fifo,",
		"    PriceTime,",
		"    ProRata,",
		"}",
		"",
		"#[account]",
		"pub struct RulesAccount {",
		"    pub authority: Pubkey,",
		"    pub rules_data: Vec<u8>,",
		"    pub block_count: u32,",
		"    pub ordering_method: OrderingMethod,",
		"    pub batch_interval: u32,",
		"    pub max_batch_size: u32,",
		"    pub blacklist: Vec<Pubkey>,",
		"    pub whitelist: Vec<Pubkey>,",
		"    pub created_at: i64,",
	)
	b.WriteString("}")

	return b.String()
}

func writeBlock(b *strings.Builder, block ir.RuleBlock) {
	switch p := block.EffectiveParams().(type) {
	case ir.OrderingParams:
		writeLines(b,
			"",
			fmt.Sprintf("    // Ordering: %s", p.Method),
			"    pub fn set_ordering(ctx: Context<UpdateRules>, method: OrderingMethod) -> Result<()> {",
			"        let rules = &mut ctx.accounts.rules_account;",
			"        rules.ordering_method = method;",
			"        Ok(())",
			"    }",
		)
	case ir.BatchingParams:
		writeLines(b,
			"",
			fmt.Sprintf("    // Batching: interval=%dms", p.IntervalMS),
			"    pub fn set_batching(ctx: Context<UpdateRules>, interval_ms: u32, max_batch: u32) -> Result<()> {",
			"        let rules = &mut ctx.accounts.rules_account;",
			"        rules.batch_interval = interval_ms;",
			"        rules.max_batch_size = max_batch;",
			"        Ok(())",
			"    }",
		)
	case ir.FilterParams:
		writeLines(b,
			"",
			"    // Filter block",
			"    pub fn set_filter(ctx: Context<UpdateRules>, blacklist: Vec<Pubkey>, whitelist: Vec<Pubkey>) -> Result<()> {",
			"        let rules = &mut ctx.accounts.rules_account;",
			"        rules.blacklist = blacklist;",
			"        rules.whitelist = whitelist;",
			"        Ok(())",
			"    }",
		)
	}
}

func writeLines(b *strings.Builder, lines ...string) {
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
