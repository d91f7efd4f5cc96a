package ai

import "strings"

const internalComplaintLetter = `{{nom}}
{{adresse}}
{{email}}

À l'attention du Service Réclamations
{{assureur}}

Le {{date}}

Objet : Réclamation - Contrat n° {{police}} - Sinistre du {{date_sinistre}}

Madame, Monsieur,

Je me permets de vous adresser la présente réclamation concernant le sinistre survenu le {{date_sinistre}}, déclaré au titre de mon contrat n° {{police}} ({{type_sinistre}}).

Par courrier du {{date_refus}}, vous m'avez notifié votre refus de prendre en charge ce sinistre pour un montant de {{montant}}, au motif suivant : {{motif}}.

Je conteste cette décision. Les garanties souscrites couvrent selon moi le sinistre déclaré, et les éléments communiqués à l'appui de ma déclaration justifient une indemnisation.

Je vous demande en conséquence de bien vouloir réexaminer mon dossier et de procéder au règlement de la somme de {{montant}} dans un délai de deux mois à compter de la réception du présent courrier.

Dans l'attente de votre réponse, je vous prie d'agréer, Madame, Monsieur, l'expression de mes salutations distinguées.

{{nom}}`

const mediationLetter = `{{nom}}
{{adresse}}
{{email}}

À l'attention de Monsieur le Médiateur de l'Assurance
TSA 50110
75441 Paris Cedex 09

Le {{date}}

Objet : Demande de médiation - Litige avec {{assureur}} - Contrat n° {{police}}

Monsieur le Médiateur,

Je sollicite votre intervention dans le litige qui m'oppose à {{assureur}} au sujet du sinistre survenu le {{date_sinistre}} ({{type_sinistre}}), déclaré au titre du contrat n° {{police}}.

Par décision du {{date_refus}}, l'assureur a refusé la prise en charge de ce sinistre pour un montant de {{montant}}, en invoquant le motif suivant : {{motif}}.

Ma réclamation auprès du service réclamations de l'assureur n'a pas permis de résoudre ce différend. J'estime que ce refus n'est pas fondé au regard des garanties de mon contrat.

Je vous remercie de bien vouloir examiner ce dossier et de rendre un avis permettant le règlement de la somme de {{montant}}. Vous trouverez ci-joint les pièces justificatives.

Je vous prie d'agréer, Monsieur le Médiateur, l'expression de ma considération distinguée.

{{nom}}`

const formalNoticeLetter = `{{nom}}
{{adresse}}
{{email}}

{{assureur}}
Lettre recommandée avec accusé de réception

Le {{date}}

Objet : Mise en demeure - Contrat n° {{police}} - Sinistre du {{date_sinistre}}

Madame, Monsieur,

Malgré mes précédentes démarches, vous maintenez votre refus, notifié le {{date_refus}}, d'indemniser le sinistre survenu le {{date_sinistre}} ({{type_sinistre}}) au titre du contrat n° {{police}}, au motif suivant : {{motif}}.

Ce refus méconnaît vos obligations contractuelles. En application de l'article 1231-6 du Code civil et des dispositions du Code des assurances, je vous mets en demeure de me régler la somme de {{montant}} dans un délai de quinze jours à compter de la réception de la présente.

À défaut, je me réserverai le droit de saisir la juridiction compétente afin d'obtenir le paiement de cette somme, majorée des intérêts au taux légal et de tous dommages et intérêts.

Je vous prie d'agréer, Madame, Monsieur, mes salutations.

{{nom}}`

var staticLetters = map[string]string{
	LetterInternalComplaint: internalComplaintLetter,
	LetterMediation:         mediationLetter,
	LetterFormalNotice:      formalNoticeLetter,
}

// StaticLetter fills the fixed letter for letterType with the case facts.
// Unknown letter types get the internal complaint letter.
func StaticLetter(letterType string, facts CaseFacts) string {
	body, ok := staticLetters[letterType]
	if !ok {
		body = internalComplaintLetter
	}
	r := strings.NewReplacer(
		"{{nom}}", facts.ClientName,
		"{{adresse}}", facts.ClientAddress,
		"{{email}}", facts.ClientEmail,
		"{{assureur}}", facts.Insurer,
		"{{date}}", facts.Today,
		"{{police}}", facts.PolicyNumber,
		"{{date_sinistre}}", facts.IncidentDate,
		"{{date_refus}}", facts.RefusalDate,
		"{{type_sinistre}}", facts.ClaimType,
		"{{montant}}", facts.RefusedAmount,
		"{{motif}}", facts.RefusalReason,
	)
	return r.Replace(body)
}
