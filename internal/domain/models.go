package domain

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&ScholarshipCycle{},
		&Applicant{},
		&FamilyInfo{},
		&Application{},
		&Assessment{},
		&Transaction{},
		&Donation{},
		&Budget{},
		&BudgetExpense{},
		&AuditLog{},
	}
}
