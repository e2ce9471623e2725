package main

import (
	"fmt"

	"github.com/spf13/cobra"

	grpc_adapter "github.com/JoeShih716/go-accounts-ledger/internal/app/core/adapter/in/grpc"
)

func (c *cli) createAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-account HOLDER_ID",
		Short: "Create an account and print its ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.call(cmd.Context(), grpc_adapter.MethodCreateAccount, map[string]any{"holderId": args[0]})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out["id"])
			return nil
		},
	}
}

func (c *cli) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info ACCOUNT_ID",
		Short: "Show an account with its current balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.call(cmd.Context(), grpc_adapter.MethodGetAccountInfo, map[string]any{"id": args[0]})
			if err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "Holder", "Balance"}, []map[string]any{out}, "id", "holderId", "balance")
			return nil
		},
	}
}

func (c *cli) searchCmd() *cobra.Command {
	var (
		id, holder   string
		index, count int
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search accounts by ID or holder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := pageArgs(index, count)
			setIf(params, "id", id)
			setIf(params, "holderId", holder)
			out, err := c.call(cmd.Context(), grpc_adapter.MethodSearchAccounts, params)
			if err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "Holder"}, results(out), "id", "holderId")
			printCursors(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "exact account ID")
	cmd.Flags().StringVar(&holder, "holder", "", "exact holder ID")
	addPageFlags(cmd, &index, &count)
	return cmd
}

func (c *cli) postCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post ACCOUNT_ID AMOUNT DATE MEMO",
		Short: "Record a transaction (AMOUNT like -50.00, DATE as YYYY-MM-DD)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.call(cmd.Context(), grpc_adapter.MethodRecordTransaction, map[string]any{
				"id":     args[0],
				"amount": args[1],
				"date":   args[2],
				"memo":   args[3],
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out["id"])
			return nil
		},
	}
}

func (c *cli) queryCmd() *cobra.Command {
	var (
		actID, date, memo string
		index, count      int
	)
	cmd := &cobra.Command{
		Use:   "query ACCOUNT_ID",
		Short: "List an account's transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := pageArgs(index, count)
			params["id"] = args[0]
			setIf(params, "actId", actID)
			setIf(params, "date", date)
			setIf(params, "memoText", memo)
			out, err := c.call(cmd.Context(), grpc_adapter.MethodQueryTransactions, params)
			if err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "Date", "Amount", "Memo"}, results(out), "id", "date", "amount", "memo")
			printCursors(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&actID, "act-id", "", "exact transaction ID")
	cmd.Flags().StringVar(&date, "date", "", "exact date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&memo, "memo", "", "case-insensitive memo substring")
	addPageFlags(cmd, &index, &count)
	return cmd
}

func (c *cli) statementCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "statement ACCOUNT_ID FROM_DATE TO_DATE",
		Short: "Print a statement with running balances for [FROM_DATE, TO_DATE]",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.call(cmd.Context(), grpc_adapter.MethodGenerateStatement, map[string]any{
				"id":       args[0],
				"fromDate": args[1],
				"toDate":   args[2],
			})
			if err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "Date", "Amount", "Memo", "Balance"}, results(out), "id", "date", "amount", "memo", "balance")
			return nil
		},
	}
}

func addPageFlags(cmd *cobra.Command, index, count *int) {
	cmd.Flags().IntVar(index, "index", 0, "start index")
	cmd.Flags().IntVar(count, "count", 0, "page size (server default when 0)")
}

func pageArgs(index, count int) map[string]any {
	params := map[string]any{"index": index}
	if count > 0 {
		params["count"] = count
	}
	return params
}

func setIf(params map[string]any, key, value string) {
	if value != "" {
		params[key] = value
	}
}
