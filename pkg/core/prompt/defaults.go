package prompt

// Compiled-in templates. These mirror the production prompt set: a French
// balance-sheet extraction instruction, the closed ratio-formula brief, the
// rental-solvency synthesis schema, the English report-schema variant, and
// the supplemental news query.

// IDs used by the stages.
const (
	ExtractionLineItems  = "extraction.line_items"
	RatioSolvencyFR      = "ratio.solvency_fr"
	SynthesisSolvencyFR  = "synthesis.solvency_fr"
	SynthesisReportEN    = "synthesis.report_en"
	SearchNewsHighlights = "search.news_highlights"
)

func registerDefaults(r *Registry) {
	for _, t := range defaultTemplates {
		_ = r.Register(t)
	}
}

var defaultTemplates = []*Template{
	{
		ID:      ExtractionLineItems,
		Name:    "Extraction des postes comptables",
		Version: "1.2",
		User: `Tu es un agent d'extraction de données financières. Le document fourni contient un bilan, un compte de résultat et éventuellement des annexes d'une entreprise.

Objectif : pour chaque intitulé standardisé ci-dessous, identifier la valeur correspondante dans le document (même si le libellé diffère), extraire la valeur brute dans l'unité du document, et la fournir pour les deux derniers exercices disponibles (N et N-1). Utiliser exclusivement les intitulés fournis.

Format de sortie JSON :
[
  { "intitulé": "Capitaux propres", "année": 2023, "valeur": 420000 },
  { "intitulé": "Capitaux propres", "année": 2022, "valeur": 415000 }
]

Chaque intitulé doit apparaître deux fois dans la liste : une fois pour N, une fois pour N-1. Si une donnée est absente pour une année, utiliser null comme valeur, sans jamais l'inventer.

Liste unique des intitulés à rechercher.

Bilan – Actif : Total de l'actif circulant ; Total des actifs immobilisés (total II) ; Total de l'actif ; Matières premières et marchandises ; Avances et acomptes versés sur commandes ; Créances clients et comptes rattachés ; Autres créances ; Charges constatées d'avance ; Capital souscrit appelé, non versé ; Disponibilités ; Amortissements cumulés (seulement année N).

Bilan – Passif : Total du passif ; Total dettes ; Capitaux propres ; Emprunts et dettes auprès des établissements de crédit ; Emprunts et dettes financières divers ; Avances et acomptes reçus sur commandes en cours ; Dettes fournisseurs et comptes rattachés ; Dettes fiscales et sociales ; Autres dettes ; Dettes sur immobilisations et comptes rattachés ; Concours bancaires courants.

Compte de résultat – Produits : Chiffre d'affaires net ; Production vendue de biens ; Production vendue de services ; Production stockée ; Production immobilisée ; Produits financiers ; Produits exceptionnels ; Subventions d'exploitation.

Compte de résultat – Charges : Achats de marchandises ; Achats de matières premières et autres approvisionnements ; Variation de stock (marchandises) ; Variation de stocks (matières premières) ; Autres achats et charges externes ; Salaires et traitements ; Charges sociales ; Impôts, taxes et versements assimilés ; Intérêts et charges assimilées ; Charges financières ; Charges exceptionnelles ; Dotations d'exploitation.

Résultat : Résultat net comptable ; Résultat d'exploitation ; Résultat financier ; Résultat courant.

À réécrire comme tel dans le JSON de sortie : Loyer = {{.AnnualRent}} ; Nom de la société = {{.CompanyName}}.

Instructions strictes : ne jamais modifier les intitulés fournis ; ne pas interpréter ou compléter une donnée absente ; ne pas faire d'analyse ni de commentaire ; ne pas convertir les unités du document.`,
	},
	{
		ID:      RatioSolvencyFR,
		Name:    "Calcul des ratios comptables",
		Version: "1.3",
		User: `CONTEXTE ET MISSION

Vous êtes un analyste financier spécialisé dans le calcul de ratios comptables. Votre mission : calculer tous les ratios requis à partir des données financières fournies (deux derniers exercices) et les retourner au format JSON structuré. Vous êtes uniquement responsable du calcul ; aucune analyse n'est demandée.

INPUT

Nom de l'entreprise : {{.CompanyName}}
Loyer payé par l'entreprise : {{.AnnualRent}}
Données financières : {{.Extraction}}

RATIOS À CALCULER (liste fermée — n'ajoutez aucun ratio supplémentaire)

STRUCTURE FINANCIÈRE : ressources_propres (Capitaux propres + Amortissements cumulés + Emprunts établissements de crédit + Emprunts et dettes financières divers) ; ressources_stables (Capitaux propres + Amortissements cumulés) ; capital_exploitation (Actif circulant – Passif circulant) ; actif_circulant_exploitation ; actif_circulant_hors_exploitation ; dettes_exploitation ; dettes_hors_exploitation ; surface_financiere_pct (Capitaux propres / Total du passif) ; couverture_immobilisations_fonds_propres_pct ; couverture_emplois_stables_pct ; frng (ressources stables élargies – total brut des immobilisations) ; bfr ; tresorerie_nette (FRNG – BFR) ; independance_financiere_pct (dettes financières / capitaux propres) ; liquidite_entreprise_pct ((créances clients + disponibilités) / dettes fournisseurs).

ACTIVITÉ D'EXPLOITATION : marge_globale ; valeur_ajoutee ; ebe ; caf ; charges_personnel_valeur_ajoutee_pct ; impots_valeur_ajoutee_pct ; charges_financieres_valeur_ajoutee_pct ; taux_marge_globale_pct ; taux_valeur_ajoutee_pct ; taux_marge_beneficiaire_pct (Résultat net / CA) ; taux_marge_brute_exploitation_pct (EBE / CA) ; taux_obsolescence_pct (Dotations / actifs immobilisés).

RENTABILITÉ : rentabilite_capitaux_propres_pct (Résultat net / Capitaux propres) ; rentabilite_economique_pct ; rentabilite_financiere_pct ; rentabilite_brute_ressources_stables_pct ; rentabilite_brute_capital_exploitation_pct.

ÉVOLUTION : taux_variation_chiffre_affaires_pct ((CA N – CA N-1) / CA N-1) ; taux_variation_valeur_ajoutee_pct ; taux_variation_resultat_pct ; taux_variation_capitaux_propres_pct.

TRÉSORERIE & FINANCEMENT : capacite_generer_cash (CAF) ; capacite_remboursement_dette (dettes financières / CAF) ; credits_bancaires_bfr.

DÉLAIS DE PAIEMENT : delai_creance_clients_jours ((Clients / CA) × 360) ; delai_dettes_fournisseurs_jours ((Fournisseurs / (Achats + Autres charges externes)) × 360).

CONSIGNES DE CALCUL

Calculer tous les ratios pour les deux exercices disponibles en précisant l'année. Arrondir à {{.Precision}} décimales les pourcentages et nombres décimaux. Conserver les unités du document, sans conversion. Si un élément comptable est absent ou null dans les données, indiquer "Donnée non disponible" et marquer le ratio "Non calculable" — ne jamais le remplacer par zéro. Chaque ratio de la liste DOIT apparaître dans la sortie, avec une valeur ou "Non calculable".

FORMAT DE SORTIE

Un unique objet JSON : { "companyName": ..., "annee_n": ..., "annee_n_moins_1": ..., "ratios": { "structure_financiere": { "annee_n": {...}, "annee_n_moins_1": {...} }, "activite_exploitation": {...}, "rentabilite": {...}, "evolution": {...}, "tresorerie_financement": {...}, "delais_paiement": {...} } }. Aucun texte avant ou après le JSON.`,
	},
	{
		ID:      SynthesisSolvencyFR,
		Name:    "Analyse de solvabilité locative",
		Version: "1.4",
		User: `CONTEXTE ET MISSION

Vous êtes un analyste financier senior spécialisé dans l'évaluation de solvabilité locative. Analysez la solidité financière d'une entreprise candidate à la location d'un local commercial à partir des ratios calculés par l'Agent 1, en tenant compte du montant du loyer.

INPUT

{ "ratios_calcules": {{.Ratios}}, "company_name": "{{.CompanyName}}", "loyer": "{{.AnnualRent}}" }
{{if .Supplemental}}
Informations publiques complémentaires (à intégrer uniquement si elles apportent un éclairage, sans jamais contredire les chiffres ci-dessus) : {{.Supplemental}}
{{end}}

FORMAT DE SORTIE OBLIGATOIRE

Votre réponse DOIT être un JSON valide unique, sans markdown ni texte autour, contenant : "companyName", "annualRent", "annee_n", "annee_n_moins_1", "ratios" (recopie exacte de tous les ratios reçus, y compris ceux marqués "Non calculable"), "chiffres_cles" (chiffre d'affaires, marge globale, valeur ajoutée, EBE, résultats, capitaux propres, dette financière pour N et N-1 ; "Non disponible" si manquant), et "analyse_financiere" (texte d'environ 800 mots).

STRUCTURE DE L'ANALYSE

1. Évolution des indicateurs clés (CA, résultat net, capitaux propres). 2. Structure financière (surface financière, endettement, FRNG, BFR, trésorerie nette). 3. Rentabilité. 4. CAF et trésorerie. 5. Poids des charges sur la valeur ajoutée. 6. Cycle d'exploitation (délais clients/fournisseurs, BFR). 7. Conclusion argumentée : calculer et commenter les ratios loyer/CA et loyer/EBE, synthèse forces/faiblesses, niveau de risque locatif (faible/moyen/élevé), recommandation motivée (favorable/réservée/défavorable).

INTERDIT : référencer des données non fournies par l'Agent 1 ; inventer ou extrapoler ; utiliser un autre nom de société que {{.CompanyName}}. Si un ratio est "Non calculable", l'indiquer clairement dans l'analyse. Commencez votre réponse directement par { et terminez par }.`,
	},
	{
		ID:      SynthesisReportEN,
		Name:    "Financial report schema",
		Version: "1.1",
		User: `You are a senior financial analyst. Produce a structured report for {{.CompanyName}} from the analysis data below.

Analysis data: {{.Analysis}}
{{if .Supplemental}}Supplemental public briefing (advisory only, never override primary figures): {{.Supplemental}}{{end}}

Respond with a single JSON object and nothing else, using exactly these keys where data exists: "executiveSummary" (string), "profitAndLoss" (array of {metric, currentValue, priorValue, change}), at most one of "segmentPerformance" or "geographicPerformance" (pick the dimension the company actually reports by; never both), "cashFlowHighlights", "forwardOutlook", "conferenceCallHighlights", "sources" (placeholder array, it will be replaced).

Formatting rules: monetary values at or above one trillion use a T suffix, at or above one billion a B suffix, at or above one million an M suffix, below one million in full; one or two decimals; keep the original currency symbol; per-share amounts, ratios and percentages are never rescaled. Omit any section with no supporting data entirely — no empty arrays, no nulls.`,
	},
	{
		ID:      SearchNewsHighlights,
		Name:    "Recherche d'actualités",
		Version: "1.0",
		User: `Résume en quelques paragraphes factuels les actualités publiques récentes et significatives concernant l'entreprise {{.CompanyName}} : santé financière, litiges, procédures collectives, évolutions d'activité, changements de direction. Ne mentionner que des faits vérifiables et citer les sources. Si aucune information fiable n'est disponible, répondre exactement : AUCUNE INFORMATION.`,
	},
}
