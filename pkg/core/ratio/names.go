package ratio

// Canonical ratio names per family. The stage guarantees every name below is
// present in its output, numeric or "Non calculable".

var structureFinanciereNames = []string{
	"ressources_propres",
	"ressources_stables",
	"capital_exploitation",
	"actif_circulant_exploitation",
	"actif_circulant_hors_exploitation",
	"dettes_exploitation",
	"dettes_hors_exploitation",
	"surface_financiere_pct",
	"couverture_immobilisations_fonds_propres_pct",
	"couverture_emplois_stables_pct",
	"frng",
	"bfr",
	"tresorerie_nette",
	"independance_financiere_pct",
	"liquidite_entreprise_pct",
}

var activiteExploitationNames = []string{
	"marge_globale",
	"valeur_ajoutee",
	"ebe",
	"caf",
	"charges_personnel_valeur_ajoutee_pct",
	"impots_valeur_ajoutee_pct",
	"charges_financieres_valeur_ajoutee_pct",
	"taux_marge_globale_pct",
	"taux_valeur_ajoutee_pct",
	"taux_marge_beneficiaire_pct",
	"taux_marge_brute_exploitation_pct",
	"taux_obsolescence_pct",
}

var rentabiliteNames = []string{
	"rentabilite_capitaux_propres_pct",
	"rentabilite_economique_pct",
	"rentabilite_financiere_pct",
	"rentabilite_brute_ressources_stables_pct",
	"rentabilite_brute_capital_exploitation_pct",
}

var evolutionNames = []string{
	"taux_variation_chiffre_affaires_pct",
	"taux_variation_valeur_ajoutee_pct",
	"taux_variation_resultat_pct",
	"taux_variation_capitaux_propres_pct",
}

var tresorerieFinancementNames = []string{
	"capacite_generer_cash",
	"capacite_remboursement_dette",
	"credits_bancaires_bfr",
}

var delaisPaiementNames = []string{
	"delai_creance_clients_jours",
	"delai_dettes_fournisseurs_jours",
}

// Count of ratios across all families.
func ExpectedCount() int {
	return len(structureFinanciereNames) +
		len(activiteExploitationNames) +
		len(rentabiliteNames) +
		len(evolutionNames) +
		len(tresorerieFinancementNames) +
		len(delaisPaiementNames)
}

func fillYears(c *Category, names []string) {
	if c.N == nil {
		c.N = make(map[string]Flexible, len(names))
	}
	if c.Nm1 == nil {
		c.Nm1 = make(map[string]Flexible, len(names))
	}
	for _, name := range names {
		if _, ok := c.N[name]; !ok {
			c.N[name] = NotCalculable()
		}
		if _, ok := c.Nm1[name]; !ok {
			c.Nm1[name] = NotCalculable()
		}
	}
}

func fillFlat(c *Category, names []string) {
	if c.Flat == nil {
		// A model that split the flat family by year gets folded: year-N
		// values win, they are the spanning rates.
		c.Flat = make(map[string]Flexible, len(names))
		for k, v := range c.Nm1 {
			c.Flat[k] = v
		}
		for k, v := range c.N {
			c.Flat[k] = v
		}
		c.N, c.Nm1 = nil, nil
	}
	for _, name := range names {
		if _, ok := c.Flat[name]; !ok {
			c.Flat[name] = NotCalculable()
		}
	}
}

// EnsureComplete backfills every missing canonical ratio with the
// "Non calculable" sentinel, in place.
func EnsureComplete(s *Set) {
	fillYears(&s.Ratios.StructureFinanciere, structureFinanciereNames)
	fillYears(&s.Ratios.ActiviteExploitation, activiteExploitationNames)
	fillYears(&s.Ratios.Rentabilite, rentabiliteNames)
	fillFlat(&s.Ratios.Evolution, evolutionNames)
	fillYears(&s.Ratios.TresorerieFinancement, tresorerieFinancementNames)
	fillYears(&s.Ratios.DelaisPaiement, delaisPaiementNames)
}
